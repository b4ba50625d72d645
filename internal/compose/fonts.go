package compose

import (
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSet resolves font faces by size from a single parsed font. All text
// rendering in the pipeline draws from one family.
type FontSet struct {
	parsed *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// LoadFonts parses the TTF at path, or the bundled Go Regular face when
// path is empty. A configured path that cannot be read or parsed is a
// missing asset.
func LoadFonts(path string) (*FontSet, error) {
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(ErrAssetMissing, "font %s: %v", path, err)
		}
		data = b
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, eris.Wrapf(ErrAssetMissing, "parse font %s: %v", path, err)
	}
	return &FontSet{parsed: parsed, faces: make(map[float64]font.Face)}, nil
}

// Face returns a cached face at the given point size, falling back to the
// basic bitmap face if face construction fails.
func (fs *FontSet) Face(size float64) font.Face {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if face, ok := fs.faces[size]; ok {
		return face
	}
	face, err := opentype.NewFace(fs.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	fs.faces[size] = face
	return face
}
