// Package filex covers the file side of the CLI: attachments read from disk,
// snapshot files and the directory holding the database.
package filex

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/models"
)

// DefaultMaxFileSize is the attachment ceiling, 5 MiB.
const DefaultMaxFileSize = 5 << 20

// ErrorFileTooLarge is returned when an attachment exceeds the ceiling.
var ErrorFileTooLarge = fmt.Errorf("%w: file too large", common.ErrorValidation)

// Stdio is the path that stands for stdin or stdout.
const Stdio = "-"

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadAttachment loads the file at path as a data URL. Files larger than
// maxSize bytes are rejected with ErrorFileTooLarge before being read.
func ReadAttachment(path string, maxSize int64) (*models.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", common.ErrorValidation, path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrorFileTooLarge, filepath.Base(path), info.Size(), maxSize)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", common.ErrorValidation, path)
	}

	return &models.Attachment{
		Filename: filepath.Base(path),
		Data:     DataURL(filepath.Ext(path), data),
	}, nil
}

// DataURL encodes data as "data:<mime>;base64,...". The type comes from
// the extension when known and is sniffed from the content otherwise;
// parameters such as charset are dropped.
func DataURL(ext string, data []byte) string {
	mt := mime.TypeByExtension(strings.ToLower(ext))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	mt, _, _ = strings.Cut(mt, ";")
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// WriteSnapshot writes data to path, or to stdout when path is Stdio.
func WriteSnapshot(path string, stdout io.Writer, data []byte) error {
	if path == Stdio {
		if _, err := stdout.Write(data); err != nil {
			return err
		}
		_, err := io.WriteString(stdout, "\n")
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot reads at most maxSize bytes from path, or from stdin when
// path is Stdio.
func ReadSnapshot(path string, stdin io.Reader, maxSize int64) ([]byte, error) {
	r := stdin
	if path != Stdio {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: snapshot larger than %d bytes", ErrorFileTooLarge, maxSize)
	}
	return data, nil
}
