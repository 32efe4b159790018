package imaging

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sort"

	"github.com/ironsheep/image-strip-mcp/internal/crop"
	"golang.org/x/sync/errgroup"
)

// RegionLookup returns the crop region measured for an image index.
// *crop.Store satisfies it.
type RegionLookup interface {
	Get(index int) (*crop.Region, bool)
}

// ComposeOptions controls CropAllAndStitch.
type ComposeOptions struct {
	// Fill paints the area right of images narrower than the composite.
	// Nil means fully transparent.
	Fill color.Color

	// Workers bounds how many images are cropped at once. Zero or less
	// means runtime.NumCPU().
	Workers int
}

// Skip records an image left out of the composite.
type Skip struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Composite is the result of CropAllAndStitch.
type Composite struct {
	// Image is the stitched strip. Nil when nothing could be cropped.
	Image *image.NRGBA

	// Included lists the display indices that made it into Image, top to
	// bottom.
	Included []int

	// Skipped lists images that had a region but failed to map or crop.
	Skipped []Skip

	// StoppedAt is the first index with no measured region, or -1 when
	// every image had one. Images from StoppedAt on are not considered.
	StoppedAt int
}

type cropJob struct {
	index int
	src   *Source
	rect  crop.PixelRect
}

// CropAllAndStitch crops every image of the active set to its region and
// stacks the results in display order.
//
// Images are visited from index 0. The first index without a region ends the
// walk: whatever is ready so far is still stitched. An image whose region is
// invalid or whose rectangle does not fit is skipped and recorded in
// Composite.Skipped. Cropping runs concurrently, bounded by opts.Workers.
//
// When nothing is left to stitch the error wraps ErrEmptyInput and the
// returned Composite still reports what was skipped. A cancelled ctx returns
// ctx.Err().
func CropAllAndStitch(ctx context.Context, sources []*Source, regions RegionLookup, opts ComposeOptions) (*Composite, error) {
	out := &Composite{StoppedAt: -1}

	var jobs []cropJob
	for i, src := range sources {
		region, ok := regions.Get(i)
		if !ok {
			out.StoppedAt = i
			break
		}
		if src == nil || src.Image == nil {
			out.Skipped = append(out.Skipped, newSkip(i, fmt.Errorf("image %d: no pixels", i)))
			continue
		}
		rect, err := crop.MapToPixelRect(region, src.NaturalSize())
		if err != nil {
			out.Skipped = append(out.Skipped, newSkip(i, err))
			continue
		}
		jobs = append(jobs, cropJob{index: i, src: src, rect: rect})
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cropped := make([]*image.NRGBA, len(jobs))
	errs := make([]error, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for j, job := range jobs {
		j, job := j, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cropped[j], errs[j] = CropOne(job.src, job.rect)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	images := make([]image.Image, 0, len(jobs))
	for j, job := range jobs {
		if errs[j] != nil {
			out.Skipped = append(out.Skipped, newSkip(job.index, errs[j]))
			continue
		}
		images = append(images, cropped[j])
		out.Included = append(out.Included, job.index)
	}
	sort.Slice(out.Skipped, func(a, b int) bool { return out.Skipped[a].Index < out.Skipped[b].Index })

	if len(images) == 0 {
		return out, fmt.Errorf("%w: no image was ready to crop", ErrEmptyInput)
	}

	composite, err := StitchVertically(images, opts.Fill)
	if err != nil {
		return out, err
	}
	out.Image = composite
	return out, nil
}

func newSkip(index int, err error) Skip {
	return Skip{Index: index, Reason: err.Error(), Err: err}
}
