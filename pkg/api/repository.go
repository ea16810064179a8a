package api

import (
	"io"

	"github.com/gamedevlabs/pixe"
)

type repo struct {
	client *Client
}

// NewRepository wraps the API client in the pixe.Storage interface.
func NewRepository(c *Client) pixe.Storage {
	return &repo{
		client: c,
	}
}

func (r *repo) List() ([]*pixe.Moodboard, error) {
	return r.client.List()
}

func (r *repo) Moodboard(id string) (*pixe.Moodboard, error) {
	return r.client.Fetch(id)
}

func (r *repo) UpdateImage(boardID, imageID string, u pixe.ImageUpdate) error {
	return r.client.UpdateImage(boardID, imageID, u)
}

func (r *repo) DeleteImage(boardID, imageID string) error {
	return r.client.DeleteImage(boardID, imageID)
}

func (r *repo) CreateText(boardID string, t *pixe.TextElement) (*pixe.TextElement, error) {
	return r.client.CreateText(boardID, t)
}

func (r *repo) UpdateText(boardID, textID string, u pixe.TextUpdate) error {
	return r.client.UpdateText(boardID, textID, u)
}

func (r *repo) DeleteText(boardID, textID string) error {
	return r.client.DeleteText(boardID, textID)
}

func (r *repo) UploadImage(boardID string, src io.Reader, filename, title, source string, at pixe.Rect) (*pixe.ImageElement, error) {
	return r.client.UploadImage(boardID, src, filename, title, source, at)
}

func (r *repo) ImportImage(boardID, imageURL string, at pixe.Rect) (*pixe.ImageElement, error) {
	return r.client.ImportImage(boardID, imageURL, at)
}

func (r *repo) SaveDrawingLayer(boardID, encoded string) error {
	return r.client.SaveDrawingLayer(boardID, encoded)
}
