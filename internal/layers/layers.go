// Package layers pairs base images with their masks on disk and steps
// through them for the editor.
package layers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoLayers is returned by Open when the image directory holds no PNG
// files.
var ErrNoLayers = errors.New("no layers found")

// Layer is one image and the mask files that belong to it. MaskPath may not
// exist yet, in which case the mask starts blank.
type Layer struct {
	Name      string
	ImagePath string
	MaskPath  string
	OutPath   string
}

// Stack is an ordered list of layers with a cursor.
type Stack struct {
	layers []Layer
	index  int
}

// Open pairs every *.png in imageDir with the file of the same name in
// maskDir. Saved masks are written back to maskDir.
func Open(imageDir, maskDir string) (*Stack, error) {
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}
	var ls []Layer
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		mask := filepath.Join(maskDir, name+".png")
		ls = append(ls, Layer{
			Name:      name,
			ImagePath: filepath.Join(imageDir, e.Name()),
			MaskPath:  mask,
			OutPath:   mask,
		})
	}
	if len(ls) == 0 {
		return nil, fmt.Errorf("%s: %w", imageDir, ErrNoLayers)
	}
	sort.Slice(ls, func(i, j int) bool { return ls[i].Name < ls[j].Name })
	return &Stack{layers: ls}, nil
}

// Single returns a stack with one layer. An empty outPath saves over
// maskPath; when both are empty the mask is written next to the image as
// <name>_mask.png.
func Single(imagePath, maskPath, outPath string) *Stack {
	base := filepath.Base(imagePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if outPath == "" {
		outPath = maskPath
	}
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(imagePath), name+"_mask.png")
	}
	return &Stack{layers: []Layer{{
		Name:      name,
		ImagePath: imagePath,
		MaskPath:  maskPath,
		OutPath:   outPath,
	}}}
}

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Index returns the cursor position.
func (s *Stack) Index() int { return s.index }

// Current returns the layer under the cursor.
func (s *Stack) Current() Layer { return s.layers[s.index] }

// Layer returns layer i.
func (s *Stack) Layer(i int) (Layer, error) {
	if i < 0 || i >= len(s.layers) {
		return Layer{}, fmt.Errorf("layer %d out of range [0,%d)", i, len(s.layers))
	}
	return s.layers[i], nil
}

// Next moves the cursor forward. It reports false at the last layer.
func (s *Stack) Next() bool {
	if s.index+1 >= len(s.layers) {
		return false
	}
	s.index++
	return true
}

// Previous moves the cursor back. It reports false at the first layer.
func (s *Stack) Previous() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

// Seek moves the cursor to i.
func (s *Stack) Seek(i int) error {
	if _, err := s.Layer(i); err != nil {
		return err
	}
	s.index = i
	return nil
}

// Load reads the image and mask bytes of layer i. A missing mask file
// returns nil mask bytes.
func (s *Stack) Load(i int) (img, mask []byte, err error) {
	l, err := s.Layer(i)
	if err != nil {
		return nil, nil, err
	}
	img, err = os.ReadFile(l.ImagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load layer %d: %w", i, err)
	}
	if l.MaskPath == "" {
		return img, nil, nil
	}
	mask, err = os.ReadFile(l.MaskPath)
	if errors.Is(err, fs.ErrNotExist) {
		return img, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load layer %d mask: %w", i, err)
	}
	return img, mask, nil
}

// SaveMask writes mask PNG bytes to the output path of layer i, creating
// directories as needed. The file is replaced atomically. Later loads of
// the layer read the saved mask.
func (s *Stack) SaveMask(i int, data []byte) error {
	l, err := s.Layer(i)
	if err != nil {
		return err
	}
	if err := writeFile(l.OutPath, data); err != nil {
		return fmt.Errorf("save layer %d: %w", i, err)
	}
	s.layers[i].MaskPath = l.OutPath
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
