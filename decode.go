package dngpipe

import (
	"github.com/motioncam/dngpipe/internal/logging"
	"github.com/motioncam/dngpipe/internal/mcraw"
	"github.com/motioncam/dngpipe/internal/pipeline"
	"github.com/motioncam/dngpipe/internal/settings"
)

// Container is an opened MCRAW clip: its indexed frames and metadata,
// ready to plan jobs against. The underlying bytes are borrowed until
// Close releases them.
type Container struct {
	src    *mcraw.Source
	parser *mcraw.Parser
}

// Open indexes the MCRAW container at path, memory-mapping it when
// possible. The caller must Close the returned Container.
func Open(path string) (*Container, error) {
	src, err := mcraw.OpenFile(path)
	if err != nil {
		return nil, err
	}
	parser, err := mcraw.New(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	return &Container{src: src, parser: parser}, nil
}

// OpenBytes indexes an MCRAW container already resident in memory,
// without copying b. The caller must Close the returned Container.
func OpenBytes(b []byte) (*Container, error) {
	parser, err := mcraw.New(mcraw.FromBytes(b))
	if err != nil {
		return nil, err
	}
	return &Container{parser: parser}, nil
}

// Close releases any memory mapping backing the container.
func (c *Container) Close() error {
	if c.src == nil {
		return nil
	}
	return c.src.Close()
}

// NewJob plans a render job over this container under settings s.
// containerID seeds cache/single-flight keys; an empty value is
// generated. base names the output files; an empty value defaults to
// "clip". cache and logger may be nil to use the no-op cache and the
// default stderr logger respectively.
func (c *Container) NewJob(containerID, base string, s settings.RenderSettings, cache pipeline.Cache, logger logging.Logger) *pipeline.Job {
	return pipeline.NewJob(containerID, base, c.parser, s, cache, logger)
}
