package dockercli

import (
	"fmt"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/google/go-containerregistry/pkg/name"
)

// ParseImage validates s as a docker image tag ([registry/]name[:tag]).
// A missing tag defaults to "latest".
func ParseImage(s string) (domain.ImageRef, error) {
	s = strings.TrimSpace(s)
	ref, err := name.NewTag(s, name.WithDefaultRegistry(""))
	if err != nil {
		return domain.ImageRef{}, &domain.OpError{
			Op:   "dockercli.parse_image",
			Kind: domain.KindInvalidConfig,
			Path: s,
			Err:  fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err),
		}
	}
	return domain.ImageRef{Repository: ref.Repository.Name(), Tag: ref.TagStr()}, nil
}
