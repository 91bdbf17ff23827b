// Package avatar crops uploaded avatars to a square JPEG and stores them.
package avatar

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"

	"github.com/weiawesome/wes-io-social/internal/domain"
	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
	"github.com/weiawesome/wes-io-social/pkg/storage"
)

// Config controls the processed output.
type Config struct {
	Size         int    `mapstructure:"size"`
	JPEGQuality  int    `mapstructure:"jpeg_quality"`
	OutputPrefix string `mapstructure:"output_prefix"`
}

// Processor turns an uploaded image into a stored avatar.
type Processor struct {
	store storage.Storage
	cfg   Config
}

// NewProcessor creates a Processor writing to store.
func NewProcessor(store storage.Storage, cfg Config) *Processor {
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 85
	}
	if cfg.OutputPrefix == "" {
		cfg.OutputPrefix = "avatars/"
	}
	return &Processor{store: store, cfg: cfg}
}

// Process decodes r, crops it to a centred square, stores the JPEG and
// returns its public URL.
func (p *Processor) Process(ctx context.Context, userID string, r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", domain.ErrInvalidImage
	}

	// Square crop centred on the image.
	squared := imaging.Fill(img, p.cfg.Size, p.cfg.Size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, squared, imaging.JPEG, imaging.JPEGQuality(p.cfg.JPEGQuality)); err != nil {
		return "", fmt.Errorf("encode avatar: %w", err)
	}

	key := fmt.Sprintf("%s%s/%s.jpg", p.cfg.OutputPrefix, userID, ulid.Make().String())
	if err := p.store.Write(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "image/jpeg"); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}

	l := pkglog.Ctx(ctx)
	l.Info().Str(pkglog.FieldUserID, userID).Str("key", key).Msg("stored avatar")

	return p.store.PublicURL(key), nil
}
