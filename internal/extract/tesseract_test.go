package extract

import (
	"strconv"
	"strings"
	"testing"
)

func tsvLine(lineNum int, word string) string {
	// level page_num block_num par_num line_num word_num left top width height conf text
	cols := []string{"5", "1", "1", "1", strconv.Itoa(lineNum), "1", "0", "0", "10", "10", "90", word}
	return strings.Join(cols, "\t")
}

func TestRowsFromTSV(t *testing.T) {
	tsv := strings.Join([]string{
		"level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext",
		tsvLine(1, "Date"),
		tsvLine(1, "Hours"),
		tsvLine(1, "Tutor"),
		tsvLine(2, "03/03/2025"),
		tsvLine(2, "2.0"),
		tsvLine(3, "total"),
		"",
	}, "\n")

	grid := rowsFromTSV(tsv)
	if len(grid) != 3 {
		t.Fatalf("rows = %d, want 3", len(grid))
	}
	// every row padded to the widest row
	for i, row := range grid {
		if len(row) != 3 {
			t.Errorf("row %d has %d cells, want 3", i, len(row))
		}
	}
	if grid[0][0] != "Date" || grid[0][2] != "Tutor" {
		t.Errorf("header row = %v", grid[0])
	}
	if grid[1][0] != "03/03/2025" || grid[1][1] != "2.0" || grid[1][2] != "" {
		t.Errorf("data row = %v", grid[1])
	}
	if grid[2][0] != "total" || grid[2][1] != "" {
		t.Errorf("short row = %v", grid[2])
	}
}

func TestRowsFromTSVEmpty(t *testing.T) {
	grid := rowsFromTSV("level\t...header only\n")
	if len(grid) != 0 {
		t.Errorf("grid = %v, want empty", grid)
	}

	grid = rowsFromTSV("")
	if len(grid) != 0 {
		t.Errorf("grid = %v, want empty", grid)
	}
}

func TestRowsFromTSVSkipsBlankWords(t *testing.T) {
	tsv := strings.Join([]string{
		"header",
		tsvLine(1, "word"),
		tsvLine(1, "   "),
		tsvLine(1, "next"),
	}, "\n")

	grid := rowsFromTSV(tsv)
	if len(grid) != 1 {
		t.Fatalf("rows = %d, want 1", len(grid))
	}
	if len(grid[0]) != 2 || grid[0][0] != "word" || grid[0][1] != "next" {
		t.Errorf("row = %v", grid[0])
	}
}
