package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractAPI is the slice of the Textract client the engine uses,
// extracted so tests can fake the cloud.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
}

// NewTextractClient builds a real Textract client from the ambient AWS
// credential chain.
func NewTextractClient(ctx context.Context, region string) (*textract.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return textract.NewFromConfig(cfg), nil
}

// TextractEngine is the networked, paid last resort of the cascade. The
// synchronous Textract APIs only take single-page documents, so table
// extraction rasterizes the requested page locally first.
type TextractEngine struct {
	client   TextractAPI
	runner   Runner
	pdftoppm string
	dpi      int
	logger   *slog.Logger
}

func NewTextractEngine(client TextractAPI, runner Runner, pdftoppm string, dpi int, logger *slog.Logger) *TextractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &TextractEngine{client: client, runner: runner, pdftoppm: pdftoppm, dpi: dpi, logger: logger}
}

func (e *TextractEngine) Name() string { return "textract" }

func (e *TextractEngine) Capabilities() Capability { return CapText | CapTable }

func (e *TextractEngine) ExtractText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &EngineError{Engine: e.Name(), Err: err}
	}
	out, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: data},
	})
	if err != nil {
		return "", &EngineError{Engine: e.Name(), Err: err}
	}

	var text string
	for _, block := range out.Blocks {
		if block.BlockType == types.BlockTypeLine {
			text += aws.ToString(block.Text) + "\n"
		}
	}
	return text, nil
}

// ExtractTable submits the rasterized page for table analysis and rebuilds
// the first table's grid from its CELL blocks.
func (e *TextractEngine) ExtractTable(ctx context.Context, path string, page int) ([][]string, error) {
	img, cleanup, err := e.renderPage(ctx, path, page)
	if err != nil {
		return nil, &EngineError{Engine: e.Name(), Err: err}
	}
	defer cleanup()

	data, err := os.ReadFile(img)
	if err != nil {
		return nil, &EngineError{Engine: e.Name(), Err: err}
	}
	out, err := e.client.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document:     &types.Document{Bytes: data},
		FeatureTypes: []types.FeatureType{types.FeatureTypeTables},
	})
	if err != nil {
		return nil, &EngineError{Engine: e.Name(), Err: err}
	}

	blocks := make(map[string]types.Block, len(out.Blocks))
	for _, b := range out.Blocks {
		blocks[aws.ToString(b.Id)] = b
	}

	for _, b := range out.Blocks {
		if b.BlockType != types.BlockTypeTable {
			continue
		}
		grid := gridFromTable(b, blocks)
		if len(grid) > 0 {
			return grid, nil
		}
	}
	e.logger.Debug("textract found no table", "path", filepath.Base(path), "page", page)
	return [][]string{}, nil
}

func (e *TextractEngine) renderPage(ctx context.Context, path string, page int) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "dp-tx-*")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.pdftoppm,
		"-r", fmt.Sprintf("%d", e.dpi), "-png",
		"-f", fmt.Sprintf("%d", page+1), "-l", fmt.Sprintf("%d", page+1),
		path, prefix)
	if err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}
	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		cleanup()
		return "", func() {}, fmt.Errorf("page %d not rendered", page)
	}
	return matches[0], cleanup, nil
}

// gridFromTable resolves TABLE -> CELL -> WORD relationships into rows.
func gridFromTable(table types.Block, blocks map[string]types.Block) [][]string {
	var cells []types.Block
	for _, rel := range table.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			if child, ok := blocks[id]; ok && child.BlockType == types.BlockTypeCell {
				cells = append(cells, child)
			}
		}
	}
	if len(cells) == 0 {
		return nil
	}

	maxRow, maxCol := 0, 0
	for _, c := range cells {
		if int(aws.ToInt32(c.RowIndex)) > maxRow {
			maxRow = int(aws.ToInt32(c.RowIndex))
		}
		if int(aws.ToInt32(c.ColumnIndex)) > maxCol {
			maxCol = int(aws.ToInt32(c.ColumnIndex))
		}
	}

	grid := make([][]string, maxRow)
	for i := range grid {
		grid[i] = make([]string, maxCol)
	}
	for _, c := range cells {
		row := int(aws.ToInt32(c.RowIndex)) - 1
		col := int(aws.ToInt32(c.ColumnIndex)) - 1
		if row < 0 || col < 0 {
			continue
		}
		grid[row][col] = cellText(c, blocks)
	}
	return grid
}

func cellText(cell types.Block, blocks map[string]types.Block) string {
	var text string
	for _, rel := range cell.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			if word, ok := blocks[id]; ok && word.BlockType == types.BlockTypeWord {
				if text != "" {
					text += " "
				}
				text += aws.ToString(word.Text)
			}
		}
	}
	return text
}
