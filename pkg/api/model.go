package api

import (
	"github.com/gamedevlabs/pixe"
)

// Response and request envelopes for the board service.
//
// The service wraps every payload in a single-key object named after
// the entity, e.g. {"moodboard": {...}}.

type boardListResponse struct {
	Moodboards []*pixe.Moodboard `json:"moodboards"`
}

type boardResponse struct {
	Moodboard *pixe.Moodboard `json:"moodboard"`
}

type imageResponse struct {
	Image *pixe.ImageElement `json:"image"`
}

type textResponse struct {
	Text *pixe.TextElement `json:"text"`
}

type importRequest struct {
	ImageURL string  `json:"image_url"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

type drawingRequest struct {
	DrawingLayer string `json:"canvas_drawing_layer"`
}

// Message is one notification from the websocket service.
// The service broadcasts a message whenever a board changes.
type Message struct {
	Event       string `json:"event"`
	MoodboardID string `json:"moodboard_id"`
	ElementID   string `json:"element_id,omitempty"`
}
