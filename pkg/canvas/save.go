package canvas

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

// DefaultDPI is the export resolution used when none is given.
const DefaultDPI = 200

// EncodeOptions carries the export parameters an encoder needs.
type EncodeOptions struct {
	DPI float64
}

// Encoder turns a sealed drawing into a file format.
type Encoder interface {
	// Format returns the short format name, e.g. "png".
	Format() string
	// Encode writes the drawing to w.
	Encode(w io.Writer, d *Drawing, opts EncodeOptions) error
}

// SaveOptions configures Save and Encode.
type SaveOptions struct {
	DPI        float64      // 0 uses DefaultDPI
	Background palette.Role // empty keeps the canvas background
	Encoder    Encoder      // required
}

func (o SaveOptions) dpi() float64 {
	if o.DPI == 0 {
		return DefaultDPI
	}
	return o.DPI
}

// Encode seals the canvas and writes the encoded drawing to w.
func (c *Canvas) Encode(w io.Writer, opts SaveOptions) error {
	if opts.Encoder == nil {
		return errors.New(errors.ErrCodeInvalidFormat, "no encoder configured")
	}
	dpi := opts.dpi()
	if dpi <= 0 || !finite(dpi) {
		return errors.New(errors.ErrCodeInvalidGeometry, "resolution must be positive, got %g", opts.DPI)
	}
	d := c.Seal()
	if opts.Background != "" {
		bg, err := c.palette.Resolve(opts.Background)
		if err != nil {
			return err
		}
		d.Background = bg
	}
	if err := opts.Encoder.Encode(w, d, EncodeOptions{DPI: dpi}); err != nil {
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeExport, err, "encode %s", opts.Encoder.Format())
	}
	return nil
}

// Save seals the canvas and writes it to path. The file is replaced
// atomically, so readers never observe a partially written image. Saving
// the same canvas again produces identical bytes.
func (c *Canvas) Save(path string, opts SaveOptions) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := c.Encode(&buf, opts); err != nil {
		return err
	}
	if err := WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write %s", path)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
