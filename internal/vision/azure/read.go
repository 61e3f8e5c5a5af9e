package azure

import (
	"context"
	"strings"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/internal/vision/poll"
	"go-vision-analyzer/pkg/models"
)

// Read operation statuses
const (
	readNotStarted = "notStarted"
	readRunning    = "running"
	readSucceeded  = "succeeded"
	readFailed     = "failed"
)

type readResponse struct {
	Status        string `json:"status"`
	AnalyzeResult *struct {
		ReadResults []struct {
			Page  int `json:"page"`
			Lines []struct {
				Text        string    `json:"text"`
				BoundingBox []float64 `json:"boundingBox"`
				Words       []struct {
					Text       string  `json:"text"`
					Confidence float64 `json:"confidence"`
				} `json:"words"`
			} `json:"lines"`
		} `json:"readResults"`
	} `json:"analyzeResult"`
}

// ExtractText submits a Read operation and polls it to completion
func (c *Client) ExtractText(ctx context.Context, img vision.Image, opts vision.Options) (*models.TextExtractionResult, error) {
	var params map[string]string
	if opts.Has(vision.OptLanguage) {
		params = map[string]string{"language": opts.Language()}
	}

	resp, err := c.post(ctx, vision.ProviderAzure, "read_submit", c.visionURL("read/analyze"), params, img.Bytes, nil)
	if err != nil {
		return nil, err
	}
	operationURL := resp.Header().Get(headerOperationLocation)
	if operationURL == "" {
		return nil, apperrors.NewVendorError(vision.ProviderAzure, resp.StatusCode(), "No operation location returned", nil)
	}

	var result readResponse
	_, err = c.poller.Poll(ctx, func(ctx context.Context) (poll.Status, string, error) {
		var current readResponse
		if err := c.get(ctx, "read_status", operationURL, &current); err != nil {
			return poll.StatusRunning, "", err
		}
		switch current.Status {
		case readSucceeded:
			result = current
			return poll.StatusSucceeded, "", nil
		case readFailed:
			return poll.StatusFailed, current.Status, nil
		case readNotStarted, readRunning:
			return poll.StatusRunning, "", nil
		default:
			return poll.StatusFailed, "unexpected status " + current.Status, nil
		}
	})
	if err != nil {
		return nil, err
	}

	blocks := readBlocks(&result)
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines = append(lines, b.Text)
	}

	return &models.TextExtractionResult{
		Blocks:      blocks,
		FullText:    strings.Join(lines, "\n"),
		TotalBlocks: len(blocks),
		Language:    opts.Language(),
		Provider:    vision.ProviderAzure,
	}, nil
}

// readBlocks turns every recognized line into a block scored by its mean word confidence
func readBlocks(r *readResponse) []models.TextBlock {
	blocks := []models.TextBlock{}
	if r.AnalyzeResult == nil {
		return blocks
	}
	for _, page := range r.AnalyzeResult.ReadResults {
		for _, line := range page.Lines {
			var sum float64
			for _, w := range line.Words {
				sum += w.Confidence
			}
			confidence := 0.0
			if len(line.Words) > 0 {
				confidence = sum / float64(len(line.Words))
			}
			blocks = append(blocks, models.TextBlock{
				Text:        line.Text,
				Confidence:  vision.NormalizeConfidence(confidence, vision.ScaleUnit),
				BoundingBox: vision.BoxFromPolygon(vision.PolygonFromFlat(line.BoundingBox), models.UnitPixel),
			})
		}
	}
	return blocks
}
