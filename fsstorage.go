package pixe

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gamedevlabs/pixe/internal/fs"
	"github.com/gamedevlabs/pixe/internal/logging"
)

type fsStorage struct {
	base string
	mx   sync.Mutex
}

// NewFilesystemStorage creates a Storage backed by a local directory.
// Each board is stored as a single <id>.json file; uploaded image data
// goes to an assets/ subdirectory.
func NewFilesystemStorage(base string) Storage {
	return &fsStorage{base: base}
}

func (f *fsStorage) List() ([]*Moodboard, error) {
	entries, err := os.ReadDir(f.base)
	if err != nil {
		return nil, err
	}

	rv := make([]*Moodboard, 0)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		m, err := f.read(id)
		if err != nil {
			logging.Warning("Skip unreadable board file %q: %v", e.Name(), err)
			continue
		}
		rv = append(rv, m)
	}

	return rv, nil
}

func (f *fsStorage) Moodboard(id string) (*Moodboard, error) {
	f.mx.Lock()
	defer f.mx.Unlock()
	return f.read(id)
}

func (f *fsStorage) UpdateImage(boardID, imageID string, u ImageUpdate) error {
	return f.mutate(boardID, func(m *Moodboard) error {
		for _, i := range m.Images {
			if i.ID == imageID {
				u.Apply(i)
				return nil
			}
		}
		return NewNotFound("no image with id %q", imageID)
	})
}

func (f *fsStorage) DeleteImage(boardID, imageID string) error {
	return f.mutate(boardID, func(m *Moodboard) error {
		if !m.RemoveElement(imageID) {
			return NewNotFound("no image with id %q", imageID)
		}
		return nil
	})
}

func (f *fsStorage) CreateText(boardID string, t *TextElement) (*TextElement, error) {
	stored := *t
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	stored.MoodboardID = boardID

	err := f.mutate(boardID, func(m *Moodboard) error {
		m.Texts = append(m.Texts, &stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (f *fsStorage) UpdateText(boardID, textID string, u TextUpdate) error {
	return f.mutate(boardID, func(m *Moodboard) error {
		for _, t := range m.Texts {
			if t.ID == textID {
				u.Apply(t)
				return nil
			}
		}
		return NewNotFound("no text with id %q", textID)
	})
}

func (f *fsStorage) DeleteText(boardID, textID string) error {
	return f.mutate(boardID, func(m *Moodboard) error {
		if !m.RemoveElement(textID) {
			return NewNotFound("no text with id %q", textID)
		}
		return nil
	})
}

func (f *fsStorage) UploadImage(boardID string, r io.Reader, filename, title, source string, at Rect) (*ImageElement, error) {
	assets := filepath.Join(f.base, "assets")
	err := os.MkdirAll(assets, 0755)
	if err != nil {
		return nil, err
	}

	name := uuid.New().String() + filepath.Ext(filename)
	path := filepath.Join(assets, name)
	w, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	_, err = io.Copy(w, r)
	w.Close()
	if err != nil {
		return nil, err
	}

	img := NewImageElement(boardID, path)
	img.Title = title
	img.Source = source
	WrapImage(img).SetBounds(at)

	err = f.mutate(boardID, func(m *Moodboard) error {
		m.Images = append(m.Images, img)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (f *fsStorage) ImportImage(boardID, imageURL string, at Rect) (*ImageElement, error) {
	img := NewImageElement(boardID, imageURL)
	img.Source = imageURL
	WrapImage(img).SetBounds(at)

	err := f.mutate(boardID, func(m *Moodboard) error {
		m.Images = append(m.Images, img)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (f *fsStorage) SaveDrawingLayer(boardID, encoded string) error {
	return f.mutate(boardID, func(m *Moodboard) error {
		m.DrawingLayer = encoded
		return nil
	})
}

func (f *fsStorage) read(id string) (*Moodboard, error) {
	path := filepath.Join(f.base, id+".json")
	r, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFound("no board with id %q", id)
		}
		return nil, err
	}
	defer r.Close()

	var m Moodboard
	err = json.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, Wrap(err, "cannot decode board file %q", path)
	}
	if m.ID == "" {
		m.ID = id
	}

	return &m, nil
}

// mutate applies fn to the stored record and writes it back atomically.
func (f *fsStorage) mutate(id string, fn func(*Moodboard) error) error {
	f.mx.Lock()
	defer f.mx.Unlock()

	m, err := f.read(id)
	if err != nil {
		return err
	}

	err = fn(m)
	if err != nil {
		return err
	}

	return f.write(m)
}

func (f *fsStorage) write(m *Moodboard) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(f.base, m.ID+".json")
	return fs.WriteAtomic(path, data)
}

// SaveMoodboard writes a full board record into a filesystem storage.
// This is the entry point for creating boards locally.
func SaveMoodboard(s Storage, m *Moodboard) error {
	f, ok := s.(*fsStorage)
	if !ok {
		return NewValidationError("storage does not support saving full records")
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	f.mx.Lock()
	defer f.mx.Unlock()
	return f.write(m)
}
