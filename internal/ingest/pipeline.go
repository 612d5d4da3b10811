package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-text-search/internal/detection"
	"github.com/ironsheep/image-text-search/internal/domain"
	"github.com/ironsheep/image-text-search/internal/imaging"
	"github.com/ironsheep/image-text-search/internal/ocr"
)

// Options tunes a Pipeline.
type Options struct {
	// Preprocess sends a grayscale, contrast-adjusted PNG to the engine
	// instead of the original bytes. Stored content is always the original.
	Preprocess bool

	// SkipTextless stores an empty transcript without running OCR when the
	// image has no text-like regions.
	SkipTextless bool

	// Workers is the number of engines used concurrently. Values below 2
	// process files sequentially on a single engine.
	Workers int

	// NewID generates record IDs. Defaults to random UUIDs.
	NewID func() string
}

// Pipeline turns raw files into ProcessedImage records.
type Pipeline struct {
	acquirer ocr.Acquirer
	opts     Options
	log      *zap.Logger
}

// NewPipeline creates a pipeline that acquires engines from acquirer.
func NewPipeline(acquirer ocr.Acquirer, opts Options, log *zap.Logger) *Pipeline {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		acquirer: acquirer,
		opts:     opts,
		log:      log,
	}
}

// Process runs OCR over files and returns one record per file, in input order.
//
// Any failure fails the whole batch and no records are returned. Every engine
// acquired during the call is closed exactly once before Process returns.
// onProgress may be nil; when set it always receives a final 100.
func (p *Pipeline) Process(ctx context.Context, files []domain.RawFile, onProgress ProgressFunc) (images []domain.ProcessedImage, err error) {
	prog := newProgress(onProgress, len(files))
	defer func() { prog.finish(err) }()

	if len(files) == 0 {
		return []domain.ProcessedImage{}, nil
	}

	start := time.Now()
	workers := min(max(p.opts.Workers, 1), len(files))
	p.log.Info("Starting ingestion batch",
		zap.Int("files", len(files)),
		zap.Int("workers", workers))

	prog.report(0, "Initializing OCR engine")

	if workers == 1 {
		images, err = p.processSequential(ctx, files, prog)
	} else {
		images, err = p.processSharded(ctx, files, prog, workers)
	}
	if err != nil {
		p.log.Error("Ingestion batch failed",
			zap.Int("files", len(files)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	p.log.Info("Ingestion batch complete",
		zap.Int("files", len(files)),
		zap.Duration("elapsed", time.Since(start)))
	return images, nil
}

func (p *Pipeline) processSequential(ctx context.Context, files []domain.RawFile, prog *progress) ([]domain.ProcessedImage, error) {
	eng, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.release(eng)

	prog.report(acquiredPercent, "OCR engine ready")

	images := make([]domain.ProcessedImage, len(files))
	for i, f := range files {
		prog.fileStarted(i, f.Name)
		img, err := p.processFile(ctx, eng, f)
		if err != nil {
			return nil, err
		}
		images[i] = img
		prog.fileDone(i, f.Name)
	}
	return images, nil
}

// processSharded acquires all engines up front on the calling goroutine, so
// acquisition never races with release, then fans files out to one worker
// per engine.
func (p *Pipeline) processSharded(ctx context.Context, files []domain.RawFile, prog *progress, workers int) ([]domain.ProcessedImage, error) {
	engines := make([]ocr.Engine, 0, workers)
	defer func() {
		for _, eng := range engines {
			p.release(eng)
		}
	}()
	for i := 0; i < workers; i++ {
		eng, err := p.acquire(ctx)
		if err != nil {
			return nil, err
		}
		engines = append(engines, eng)
	}

	prog.report(acquiredPercent, fmt.Sprintf("%d OCR engines ready", workers))

	images := make([]domain.ProcessedImage, len(files))
	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for _, eng := range engines {
		eng := eng
		g.Go(func() error {
			for i := range jobs {
				prog.fileStarted(i, files[i].Name)
				img, err := p.processFile(gctx, eng, files[i])
				if err != nil {
					return err
				}
				images[i] = img
				prog.fileDone(i, files[i].Name)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (p *Pipeline) acquire(ctx context.Context) (ocr.Engine, error) {
	eng, err := p.acquirer.Acquire(ctx)
	if err != nil {
		return nil, &Error{Kind: KindEngineAcquisition, Err: err}
	}
	p.log.Debug("OCR engine acquired")
	return eng, nil
}

func (p *Pipeline) release(eng ocr.Engine) {
	if err := eng.Close(); err != nil {
		p.log.Warn("Failed to release OCR engine", zap.Error(err))
		return
	}
	p.log.Debug("OCR engine released")
}

func (p *Pipeline) processFile(ctx context.Context, eng ocr.Engine, f domain.RawFile) (domain.ProcessedImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProcessedImage{}, err
	}

	img, format, err := imaging.DecodePayload(f.Data)
	if err != nil {
		return domain.ProcessedImage{}, &Error{Kind: KindMalformedInput, File: f.Name, Err: err}
	}

	text := ""
	if p.opts.SkipTextless && !detection.HasText(img) {
		p.log.Debug("No text regions detected, skipping OCR", zap.String("file", f.Name))
	} else {
		payload := f.Data
		if p.opts.Preprocess {
			payload, err = imaging.EncodePNG(imaging.Preprocess(img))
			if err != nil {
				return domain.ProcessedImage{}, &Error{Kind: KindMalformedInput, File: f.Name, Err: err}
			}
		}

		raw, err := eng.Recognize(ctx, payload)
		if err != nil {
			return domain.ProcessedImage{}, &Error{Kind: KindRecognition, File: f.Name, Err: err}
		}
		text = ocr.Normalize(raw)
	}

	rec := domain.ProcessedImage{
		ID:      p.opts.NewID(),
		Name:    f.Name,
		Text:    text,
		Content: imaging.DataURI(f.Data, format),
	}
	p.log.Debug("Processed image",
		zap.String("id", rec.ID),
		zap.String("file", f.Name),
		zap.String("format", format),
		zap.Int("size", len(f.Data)),
		zap.Int("text_length", len(text)))
	return rec, nil
}
