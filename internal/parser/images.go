package parser

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/dgallion1/pdfextract/internal/surface"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/tiff"
)

// pageImage is an embedded image read out of the file by pdfcpu.
type pageImage struct {
	name       string
	objNr      int
	fileType   string
	colorSpace string
	data       []byte
}

func (img pageImage) decode() (surface.Pixmap, error) {
	var (
		decoded image.Image
		err     error
	)
	r := bytes.NewReader(img.data)
	switch img.fileType {
	case "png":
		decoded, err = png.Decode(r)
	case "jpg", "jpeg":
		decoded, err = jpeg.Decode(r)
	case "tif", "tiff":
		decoded, err = tiff.Decode(r)
	default:
		decoded, _, err = image.Decode(r)
	}
	if err != nil {
		return surface.Pixmap{}, fmt.Errorf("decode %s image %s: %w", img.fileType, img.name, err)
	}
	return surface.Pixmap{Image: decoded, ColorSpace: deviceSpace(img.colorSpace, decoded)}, nil
}

// deviceSpace names calibrated, ICC-based and indexed colour spaces after the
// device family of their decoded samples, so a one-component ICC image reads
// as DeviceGray and a three-component one as DeviceRGB.
func deviceSpace(cs string, img image.Image) string {
	switch cs {
	case "DeviceGray", "DeviceRGB", "DeviceCMYK":
		return cs
	}
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return "DeviceGray"
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.YCbCrModel:
		return "DeviceRGB"
	case color.CMYKModel:
		return "DeviceCMYK"
	}
	return cs
}

// imageSource loads the pdfcpu context for a file on first use. pdfcpu
// contexts are not safe for concurrent use, so page lookups are serialised.
type imageSource struct {
	path string

	once sync.Once
	ctx  *model.Context
	err  error

	mu sync.Mutex
}

func (s *imageSource) context() (*model.Context, error) {
	s.once.Do(func() {
		f, err := os.Open(s.path)
		if err != nil {
			s.err = err
			return
		}
		defer f.Close()

		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		ctx, err := api.ReadValidateAndOptimize(f, conf)
		if err != nil {
			s.err = fmt.Errorf("pdfcpu read: %w", err)
			return
		}
		s.ctx = ctx
	})
	return s.ctx, s.err
}

// page returns the images placed on page pageNr (1-based) ordered by object
// number, which is the order they were written to the file.
func (s *imageSource) page(pageNr int) ([]pageImage, error) {
	ctx, err := s.context()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("extract images on page %d: %w", pageNr, err)
	}

	return collectImages(found, pageNr)
}

// collectImages reads the payload of every image pdfcpu found on a page.
func collectImages(found map[int]model.Image, pageNr int) ([]pageImage, error) {
	images := make([]pageImage, 0, len(found))
	for _, img := range found {
		if img.Reader == nil {
			return nil, fmt.Errorf("image %s (obj %d) on page %d has no data", img.Name, img.ObjNr, pageNr)
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", img.Name, err)
		}
		images = append(images, pageImage{
			name:       img.Name,
			objNr:      img.ObjNr,
			fileType:   img.FileType,
			colorSpace: img.Cs,
			data:       data,
		})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].objNr < images[j].objNr })
	return images, nil
}
