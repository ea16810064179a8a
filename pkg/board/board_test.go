package board

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/pkg/draw"
)

// fakeStore records calls and can be set to fail.
type fakeStore struct {
	fail bool

	imageUpdates map[string][]pixe.ImageUpdate
	textUpdates  map[string][]pixe.TextUpdate
	created      []*pixe.TextElement
	deleted      []string
	drawingLayer string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		imageUpdates: make(map[string][]pixe.ImageUpdate),
		textUpdates:  make(map[string][]pixe.TextUpdate),
	}
}

func (f *fakeStore) err() error {
	if f.fail {
		return fmt.Errorf("storage unavailable")
	}
	return nil
}

func (f *fakeStore) List() ([]*pixe.Moodboard, error)          { return nil, f.err() }
func (f *fakeStore) Moodboard(id string) (*pixe.Moodboard, error) { return nil, f.err() }

func (f *fakeStore) UpdateImage(boardID, imageID string, u pixe.ImageUpdate) error {
	if f.fail {
		return f.err()
	}
	f.imageUpdates[imageID] = append(f.imageUpdates[imageID], u)
	return nil
}

func (f *fakeStore) DeleteImage(boardID, imageID string) error {
	if f.fail {
		return f.err()
	}
	f.deleted = append(f.deleted, imageID)
	return nil
}

func (f *fakeStore) CreateText(boardID string, t *pixe.TextElement) (*pixe.TextElement, error) {
	if f.fail {
		return nil, f.err()
	}
	stored := *t
	stored.ID = "server-" + t.ID
	f.created = append(f.created, &stored)
	return &stored, nil
}

func (f *fakeStore) UpdateText(boardID, textID string, u pixe.TextUpdate) error {
	if f.fail {
		return f.err()
	}
	f.textUpdates[textID] = append(f.textUpdates[textID], u)
	return nil
}

func (f *fakeStore) DeleteText(boardID, textID string) error {
	if f.fail {
		return f.err()
	}
	f.deleted = append(f.deleted, textID)
	return nil
}

func (f *fakeStore) UploadImage(boardID string, r io.Reader, filename, title, source string, at pixe.Rect) (*pixe.ImageElement, error) {
	return nil, f.err()
}

func (f *fakeStore) ImportImage(boardID, imageURL string, at pixe.Rect) (*pixe.ImageElement, error) {
	return nil, f.err()
}

func (f *fakeStore) SaveDrawingLayer(boardID, encoded string) error {
	if f.fail {
		return f.err()
	}
	f.drawingLayer = encoded
	return nil
}

// setup creates a controller over a board with two images and one text.
func setup(t *testing.T) (*Controller, *fakeStore) {
	t.Helper()

	mb := pixe.NewMoodboard("project-1", "Test Board")
	mb.ID = "board-1"

	i1 := pixe.NewImageElement(mb.ID, "https://example.com/a.png")
	i1.ID = "img-1"
	i1.X, i1.Y = 10, 10
	i1.ZIndex = 0
	i2 := pixe.NewImageElement(mb.ID, "https://example.com/b.png")
	i2.ID = "img-2"
	i2.X, i2.Y = 300, 10
	i2.ZIndex = 1
	mb.Images = append(mb.Images, i1, i2)

	tx := pixe.NewTextElement(mb.ID, pixe.Point{X: 600, Y: 10})
	tx.ID = "txt-1"
	tx.ZIndex = 2
	mb.Texts = append(mb.Texts, tx)

	store := newFakeStore()
	c := New(mb, store)
	return c, store
}

// advance replaces the controller clock with one that is always d past
// the real time, so guard windows can be stepped over.
func advance(c *Controller, d time.Duration) {
	c.now = func() time.Time { return time.Now().Add(d) }
}

func TestZoomClamped(t *testing.T) {
	c, _ := setup(t)

	for i := 0; i < 50; i++ {
		c.ZoomIn()
	}
	assert.Equal(t, MaxZoom, c.Zoom())

	for i := 0; i < 100; i++ {
		c.ZoomOut()
	}
	assert.Equal(t, MinZoom, c.Zoom())
}

func TestSelection(t *testing.T) {
	c, _ := setup(t)

	c.Select("img-1", false)
	assert.Equal(t, []string{"img-1"}, c.Selection())

	// plain select replaces
	c.Select("img-2", false)
	assert.Equal(t, []string{"img-2"}, c.Selection())

	// multi select toggles
	c.Select("img-1", true)
	assert.Equal(t, []string{"img-2", "img-1"}, c.Selection())
	c.Select("img-2", true)
	assert.Equal(t, []string{"img-1"}, c.Selection())

	// unknown ids are ignored
	c.Select("nope", false)
	assert.Equal(t, []string{"img-1"}, c.Selection())

	c.ClearSelection()
	assert.Empty(t, c.Selection())
}

func TestClickGuardAfterToolSwitch(t *testing.T) {
	c, _ := setup(t)

	c.SetTool(ToolText)
	res := c.HandleCanvasClick(pixe.Point{X: 100, Y: 100}, true)
	assert.Equal(t, ClickIgnored, res, "click inside the guard window must be ignored")

	advance(c, 300*time.Millisecond)
	res = c.HandleCanvasClick(pixe.Point{X: 100, Y: 100}, true)
	assert.Equal(t, ClickPlacedText, res)
}

func TestPlaceText(t *testing.T) {
	c, store := setup(t)
	c.SetTool(ToolText)
	advance(c, 300*time.Millisecond)

	c.HandleCanvasClick(pixe.Point{X: 100, Y: 100}, true)

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, pixe.DefaultTextContent, created.Content)
	assert.Equal(t, 3, created.ZIndex, "new text goes above all existing elements")

	// the stored element with the server id replaced the local one
	_, err := c.Moodboard().Element(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{created.ID}, c.Selection())
}

func TestPlaceTextStoreFailure(t *testing.T) {
	c, store := setup(t)
	store.fail = true
	c.SetTool(ToolText)
	advance(c, 300*time.Millisecond)

	c.HandleCanvasClick(pixe.Point{X: 100, Y: 100}, true)

	// the local element stays and is marked dirty
	require.Len(t, c.Moodboard().Texts, 2)
	assert.Len(t, c.Dirty(), 1)
}

func TestPlaceTextRequiresBackground(t *testing.T) {
	c, store := setup(t)
	c.SetTool(ToolText)
	advance(c, 300*time.Millisecond)

	// a click landing on an element does not place a text
	res := c.HandleCanvasClick(pixe.Point{X: 15, Y: 15}, false)
	assert.Equal(t, ClickNone, res)
	assert.Empty(t, store.created)
	require.Len(t, c.Moodboard().Texts, 1)
}

func TestClickClearsSelection(t *testing.T) {
	c, _ := setup(t)
	advance(c, time.Second)

	c.Select("img-1", false)
	res := c.HandleCanvasClick(pixe.Point{X: 5, Y: 5}, true)
	assert.Equal(t, ClickClearedSelection, res)
	assert.Empty(t, c.Selection())

	// a click on an element does not clear
	c.Select("img-1", false)
	res = c.HandleCanvasClick(pixe.Point{X: 5, Y: 5}, false)
	assert.Equal(t, ClickNone, res)
	assert.Equal(t, []string{"img-1"}, c.Selection())
}

func TestImageToolOpensDialog(t *testing.T) {
	c, _ := setup(t)
	c.SetTool(ToolImage)
	advance(c, time.Second)

	res := c.HandleCanvasClick(pixe.Point{X: 100, Y: 100}, true)
	assert.Equal(t, ClickOpenImageDialog, res)
}

func TestTextEdit(t *testing.T) {
	c, store := setup(t)

	require.NoError(t, c.BeginTextEdit("txt-1"))
	assert.Equal(t, "txt-1", c.Editing())

	c.CommitTextEdit("hello")
	assert.Equal(t, "", c.Editing())

	el, _ := c.Moodboard().Element("txt-1")
	assert.Equal(t, "hello", el.Text.Content)
	require.Len(t, store.textUpdates["txt-1"], 1)

	// empty content falls back to the placeholder
	require.NoError(t, c.BeginTextEdit("txt-1"))
	c.CommitTextEdit("")
	assert.Equal(t, pixe.DefaultTextContent, el.Text.Content)

	// images cannot be edited inline
	assert.Error(t, c.BeginTextEdit("img-1"))

	// cancel leaves the content untouched
	require.NoError(t, c.BeginTextEdit("txt-1"))
	c.CancelTextEdit()
	c.CommitTextEdit("discarded")
	assert.Equal(t, pixe.DefaultTextContent, el.Text.Content)
}

// Layering --------------------------------------------------------------

func TestCanReorder(t *testing.T) {
	c, _ := setup(t)

	assert.False(t, c.CanReorder(), "nothing selected")

	c.Select("img-1", false)
	assert.True(t, c.CanReorder())

	c.Select("img-2", true)
	assert.False(t, c.CanReorder(), "multi selection")
}

func TestBringToFrontWithSharedZ(t *testing.T) {
	c, _ := setup(t)
	mb := c.Moodboard()

	// image and text share z=1
	mb.Images[0].ZIndex = 1
	mb.Images[1].ZIndex = 0
	mb.Texts[0].ZIndex = 1

	c.Select("img-1", false)
	require.NoError(t, c.BringToFront())

	el, _ := mb.Element("img-1")
	assert.Equal(t, 2, el.ZIndex(), "front means strictly above every element, including texts")
	assert.Equal(t, 1, mb.Texts[0].ZIndex, "other elements keep their z")
}

func TestBringToFrontNoOpWhenUniqueTop(t *testing.T) {
	c, store := setup(t)

	c.Select("txt-1", false)
	require.NoError(t, c.BringToFront())

	el, _ := c.Moodboard().Element("txt-1")
	assert.Equal(t, 2, el.ZIndex())
	assert.Empty(t, store.textUpdates["txt-1"], "no update for an element already on top")
}

func TestSendToBack(t *testing.T) {
	c, store := setup(t)

	c.Select("txt-1", false)
	require.NoError(t, c.SendToBack())

	el, _ := c.Moodboard().Element("txt-1")
	assert.Equal(t, -1, el.ZIndex())
	require.Len(t, store.textUpdates["txt-1"], 1)
}

func TestBringForward(t *testing.T) {
	c, _ := setup(t)

	c.Select("img-1", false)
	require.NoError(t, c.BringForward())

	// one past the next distinct z (1), i.e. 2 - shared with txt-1 but
	// images paint first, so the moved element shows above z=1
	el, _ := c.Moodboard().Element("img-1")
	assert.Equal(t, 2, el.ZIndex())

	// the top element stays put on a further call
	c.Select("txt-1", false)
	el, _ = c.Moodboard().Element("txt-1")
	z := el.ZIndex()
	require.NoError(t, c.BringForward())
	assert.Equal(t, z, el.ZIndex())
}

func TestSendBackward(t *testing.T) {
	c, _ := setup(t)

	c.Select("txt-1", false)
	require.NoError(t, c.SendBackward())

	el, _ := c.Moodboard().Element("txt-1")
	assert.Equal(t, 0, el.ZIndex(), "one past the next lower distinct z (1)")

	// the bottom element stays put
	c.Select("img-1", false)
	require.NoError(t, c.SendBackward())
	el, _ = c.Moodboard().Element("img-1")
	assert.Equal(t, 0, el.ZIndex())
}

// Alignment -------------------------------------------------------------

func TestAlignTop(t *testing.T) {
	c, _ := setup(t)
	mb := c.Moodboard()
	mb.Images[0].Y = 40
	mb.Images[1].Y = 10

	c.Select("img-1", false)
	assert.Error(t, c.AlignTop(), "alignment needs two images")

	c.Select("img-2", true)
	require.NoError(t, c.AlignTop())

	assert.Equal(t, 10.0, mb.Images[0].Y)
	assert.Equal(t, 10.0, mb.Images[1].Y)
}

func TestAlignLeft(t *testing.T) {
	c, _ := setup(t)
	mb := c.Moodboard()

	c.Select("img-1", false)
	c.Select("img-2", true)
	require.NoError(t, c.AlignLeft())

	assert.Equal(t, 10.0, mb.Images[0].X)
	assert.Equal(t, 10.0, mb.Images[1].X)
}

func TestDistributeHorizontally(t *testing.T) {
	c, _ := setup(t)
	mb := c.Moodboard()

	i3 := pixe.NewImageElement(mb.ID, "https://example.com/c.png")
	i3.ID = "img-3"
	mb.Images = append(mb.Images, i3)

	mb.Images[0].X = 50
	mb.Images[1].X = 200
	mb.Images[2].X = 10

	c.Select("img-1", false)
	c.Select("img-2", true)
	assert.Error(t, c.DistributeHorizontally(), "distribution needs three images")

	c.Select("img-3", true)
	require.NoError(t, c.DistributeHorizontally())

	// evenly spread between the extremes: 10, 105, 200
	assert.Equal(t, 10.0, mb.Images[2].X)
	assert.Equal(t, 105.0, mb.Images[0].X)
	assert.Equal(t, 200.0, mb.Images[1].X)
}

// Image load ------------------------------------------------------------

func TestImageLoadedAutoResize(t *testing.T) {
	c, store := setup(t)
	mb := c.Moodboard()
	img := mb.Images[0]
	img.Width, img.Height = 200, 200

	c.ImageLoaded("img-1", 800, 400)

	// 800*0.6=480, clamped to 400; height preserves the 2:1 ratio
	assert.Equal(t, 400.0, img.Width)
	assert.Equal(t, 200.0, img.Height)
	assert.Len(t, store.imageUpdates["img-1"], 1)
}

func TestImageLoadedKeepsLargeSizes(t *testing.T) {
	c, store := setup(t)
	img := c.Moodboard().Images[0]
	img.Width, img.Height = 600, 400

	c.ImageLoaded("img-1", 800, 400)

	assert.Equal(t, 600.0, img.Width, "user-sized images are not resized")
	assert.Empty(t, store.imageUpdates["img-1"])
}

func TestImageLoadedLowerClamp(t *testing.T) {
	c, _ := setup(t)
	img := c.Moodboard().Images[0]
	img.Width, img.Height = 100, 100

	c.ImageLoaded("img-1", 200, 100)

	// 200*0.6=120, clamped up to 300
	assert.Equal(t, 300.0, img.Width)
	assert.Equal(t, 150.0, img.Height)
}

// Deletion --------------------------------------------------------------

func TestDeleteSelected(t *testing.T) {
	c, store := setup(t)

	c.Select("img-1", false)
	c.Select("txt-1", true)

	n := c.DeleteSelected()
	assert.Equal(t, 2, n)
	assert.Empty(t, c.Selection())
	assert.ElementsMatch(t, []string{"img-1", "txt-1"}, store.deleted)

	_, err := c.Moodboard().Element("img-1")
	assert.True(t, pixe.IsNotFound(err))
}

func TestDeleteSelectedContinuesOnFailure(t *testing.T) {
	c, store := setup(t)
	store.fail = true

	c.Select("img-1", false)
	c.Select("img-2", true)
	n := c.DeleteSelected()

	// local removal is authoritative even when the backend fails
	assert.Equal(t, 2, n)
	assert.Empty(t, c.Moodboard().Images)
}

func TestHandleKey(t *testing.T) {
	c, _ := setup(t)

	c.Select("img-1", false)
	c.HandleKey("Delete")
	_, err := c.Moodboard().Element("img-1")
	assert.True(t, pixe.IsNotFound(err))

	c.Select("img-2", false)
	c.HandleKey("Escape")
	assert.Empty(t, c.Selection())
}

// Save ------------------------------------------------------------------

func TestSave(t *testing.T) {
	c, store := setup(t)

	report := c.Save()
	assert.Equal(t, 4, report.Saved, "two images, one text, one drawing layer")
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, store.drawingLayer)
	assert.Equal(t, store.drawingLayer, c.Moodboard().DrawingLayer)
}

func TestSavePartialFailure(t *testing.T) {
	c, store := setup(t)
	store.fail = true

	report := c.Save()
	assert.Equal(t, 0, report.Saved)
	assert.Equal(t, 4, report.Failed)
	assert.Len(t, c.Dirty(), 3, "failed elements are marked dirty")

	// a later successful save clears the dirty set
	store.fail = false
	report = c.Save()
	assert.Equal(t, 4, report.Saved)
	assert.Empty(t, c.Dirty())
}

func TestSetRasterModeForcesSelectTool(t *testing.T) {
	c, _ := setup(t)
	c.SetTool(ToolText)

	c.SetRasterMode(draw.ModeDraw)
	assert.Equal(t, ToolSelect, c.Tool())
	assert.Equal(t, draw.ModeDraw, c.Engine().Mode())
}
