package inpaint

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/BespalovSergey/banners/internal/imaging"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// ReplicateBaseURL is the default Replicate API endpoint.
	ReplicateBaseURL = "https://api.replicate.com"

	// DefaultReplicateModel is used when neither a model nor a version is
	// configured.
	DefaultReplicateModel = "stability-ai/stable-diffusion-inpainting"

	defaultPollInterval = time.Second
	defaultPollTimeout  = 5 * time.Minute
)

// Terminal prediction states reported by Replicate.
const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
	statusCanceled  = "canceled"
)

var errPredictionPending = errors.New("prediction still running")

// ReplicateOpts configures a ReplicateInpainter.
type ReplicateOpts struct {
	APIToken string
	BaseURL  string
	// Model is "owner/name". Used when Version is empty.
	Model string
	// Version pins a model version id; it takes precedence over Model.
	Version string
	Timeout time.Duration
	// PollInterval is the first wait between status checks; later waits
	// grow exponentially up to ten times this value.
	PollInterval time.Duration
	// PollTimeout bounds the total time spent waiting for a prediction.
	PollTimeout time.Duration
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// ReplicateInpainter repaints images with a diffusion in-painting model hosted
// on Replicate.
//
// Image and mask are sent inline as data URIs. The mask follows the diffusion
// convention: white pixels are repainted, black pixels kept. The prediction
// is polled with exponential backoff until it reaches a terminal state.
type ReplicateInpainter struct {
	httpClient   *resty.Client
	model        string
	version      string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewReplicateInpainter creates an in-painter authenticated with
// opts.APIToken.
func NewReplicateInpainter(opts ReplicateOpts) *ReplicateInpainter {
	r := &ReplicateInpainter{
		model:        DefaultReplicateModel,
		version:      opts.Version,
		pollInterval: defaultPollInterval,
		pollTimeout:  defaultPollTimeout,
	}
	if opts.Model != "" {
		r.model = opts.Model
	}
	if opts.PollInterval > 0 {
		r.pollInterval = opts.PollInterval
	}
	if opts.PollTimeout > 0 {
		r.pollTimeout = opts.PollTimeout
	}

	baseURL := ReplicateBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	r.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetAuthToken(opts.APIToken).
		SetHeader("Content-Type", "application/json")
	if opts.Timeout > 0 {
		r.httpClient.SetTimeout(opts.Timeout)
	}
	return r
}

// Inpaint implements Inpainter.
func (r *ReplicateInpainter) Inpaint(ctx context.Context, inPath string, boxes []imaging.TextBox, prompt, outPath string) error {
	img, mask, err := loadWithMask(inPath, boxes)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	maskPNG, err := imaging.EncodePNG(imaging.RepaintMask(mask))
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	input := map[string]any{
		"prompt":      prompt,
		"image":       dataURI(raw),
		"mask":        dataURI(maskPNG),
		"width":       bounds.Dx(),
		"height":      bounds.Dy(),
		"num_outputs": 1,
	}

	pred, err := r.create(ctx, input)
	if err != nil {
		return err
	}
	log.Debug().Str("prediction", pred.ID).Str("status", pred.Status).Msg("replicate prediction created")

	if !isTerminal(pred.Status) {
		pred, err = r.wait(ctx, pred)
		if err != nil {
			return err
		}
	}
	if pred.Status != statusSucceeded {
		return serviceFailure("prediction", fmt.Errorf("status %s: %v", pred.Status, pred.Error))
	}

	url, err := firstOutput(pred.Output)
	if err != nil {
		return serviceFailure("prediction", err)
	}
	return download(ctx, url, outPath)
}

func (r *ReplicateInpainter) create(ctx context.Context, input map[string]any) (*prediction, error) {
	body := map[string]any{"input": input}
	path := "/v1/models/" + r.model + "/predictions"
	if r.version != "" {
		body["version"] = r.version
		path = "/v1/predictions"
	}

	pred := &prediction{}
	_, err := handleError(r.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(pred).
		Post(path))
	if err != nil {
		return nil, serviceFailure("create prediction", err)
	}
	if pred.URLs.Get == "" && !isTerminal(pred.Status) {
		return nil, serviceFailure("create prediction", errors.New("no polling url in response"))
	}
	return pred, nil
}

// wait polls the prediction until it succeeds, fails or the poll timeout
// elapses.
func (r *ReplicateInpainter) wait(ctx context.Context, pred *prediction) (*prediction, error) {
	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(r.pollInterval),
		backoff.WithMaxInterval(10*r.pollInterval),
		backoff.WithMaxElapsedTime(r.pollTimeout),
	)

	getURL := pred.URLs.Get
	result, err := backoff.RetryWithData(func() (*prediction, error) {
		current := &prediction{}
		_, err := handleError(r.httpClient.R().
			SetContext(ctx).
			SetResult(current).
			Get(getURL))
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if !isTerminal(current.Status) {
			return nil, errPredictionPending
		}
		return current, nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, serviceFailure("poll prediction", err)
	}
	return result, nil
}

func isTerminal(status string) bool {
	switch status {
	case statusSucceeded, statusFailed, statusCanceled:
		return true
	}
	return false
}

// firstOutput extracts the first URL from a prediction output, which models
// return either as a single string or as a list.
func firstOutput(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("prediction has no output")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return "", errors.New("prediction output is empty")
		}
		return single, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", fmt.Errorf("unexpected prediction output: %w", err)
	}
	for _, url := range list {
		if url != "" {
			return url, nil
		}
	}
	return "", errors.New("prediction output is empty")
}

func dataURI(data []byte) string {
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
