/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package label

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"hmidraw/internal/domain"
)

// Basic selects the fixed 7x13 bitmap face. Its metrics are exact integers,
// which keeps label extents deterministic in tests.
const Basic = "basic:7x13"

// refPx is the em size faces are measured at before scaling to scene units.
const refPx = 64

// FontLibrary caches parsed fonts by source path. The empty path is the
// embedded Go Regular face. It is safe for concurrent use.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[string]*opentype.Font)} }

func (fl *FontLibrary) load(path string) (*opentype.Font, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[string]*opentype.Font)
	}
	if f, ok := fl.fonts[path]; ok {
		return f, nil
	}
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %v: %w", path, err, domain.ErrAssetLoad)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %v: %w", path, err, domain.ErrAssetLoad)
	}
	fl.fonts[path] = f
	return f, nil
}

// Face resolves path to a face at the reference size, together with the
// em size in pixels that face was built for.
func (fl *FontLibrary) Face(path string) (font.Face, float64, error) {
	if path == Basic {
		return basicfont.Face7x13, 13, nil
	}
	f, err := fl.load(path)
	if err != nil {
		return nil, 0, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: refPx, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, 0, fmt.Errorf("face %s: %v: %w", path, err, domain.ErrAssetLoad)
	}
	return face, refPx, nil
}

// FaceAt returns a face for drawing at px pixels per em. The Basic face
// has a single size and ignores px.
func (fl *FontLibrary) FaceAt(path string, px float64) (font.Face, error) {
	if path == Basic {
		return basicfont.Face7x13, nil
	}
	f, err := fl.load(path)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: px, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("face %s at %vpx: %v: %w", path, px, err, domain.ErrAssetLoad)
	}
	return face, nil
}

// Loaded reports how many parsed fonts are cached.
func (fl *FontLibrary) Loaded() int {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return len(fl.fonts)
}
