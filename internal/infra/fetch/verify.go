package fetch

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/logger"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Verifier checks downloaded files against archive checksums.
type Verifier struct {
	Enabled bool
}

var _ ports.FileVerifier = (*Verifier)(nil)

func NewVerifier(enabled bool) *Verifier {
	return &Verifier{Enabled: enabled}
}

// Verify reports whether path holds a valid copy of file. A missing or empty
// file is invalid; an unknown checksum method is accepted with a warning.
func (v *Verifier) Verify(path string, file domain.RunFile) (bool, error) {
	if !v.Enabled {
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &domain.OpError{Op: "fetch.verify", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if info.IsDir() || info.Size() == 0 {
		return false, nil
	}

	if file.Checksum == "" || file.ChecksumMethod == "" {
		return true, nil
	}

	var h hash.Hash
	switch strings.ToLower(file.ChecksumMethod) {
	case "md5":
		h = md5.New()
	case "sha256":
		h = sha256.New()
	default:
		logger.L().Warn("fetch.verify.unknown_method", "path", path, "method", file.ChecksumMethod)
		return true, nil
	}

	sum, err := fileSum(path, h)
	if err != nil {
		return false, &domain.OpError{Op: "fetch.verify", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if !strings.EqualFold(sum, file.Checksum) {
		logger.L().Error("fetch.verify.mismatch", "path", path, "expected", file.Checksum, "actual", sum)
		return false, nil
	}
	return true, nil
}

// Size returns the size of the regular file at path.
func (v *Verifier) Size(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

func fileSum(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
