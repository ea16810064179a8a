package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/internal/logging"
)

// API endpoints
const (
	// boards
	epBoards = "/api/v1/moodboards"
	epBoard  = "/api/v1/moodboards/%v"
	// elements
	epImages      = "/api/v1/moodboards/%v/images"
	epImage       = "/api/v1/moodboards/%v/images/%v"
	epImageImport = "/api/v1/moodboards/%v/images/import"
	epTexts       = "/api/v1/moodboards/%v/texts"
	epText        = "/api/v1/moodboards/%v/texts/%v"
	// drawing layer
	epDrawing = "/api/v1/moodboards/%v/drawing-layer"
	// notifications
	epNotifications = "/api/v1/moodboards/ws"
)

// Client represents the ReST API of the pix:e board service.
type Client struct {
	base   string
	token  string
	client *http.Client
}

// NewClient sets up an API client for the given base URL.
// The token is sent as a bearer token on each request.
func NewClient(base, token string) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewNotifications sets up a client for the board change notifications
// service on the same host.
func (c *Client) NewNotifications() (*Notifications, error) {
	u, err := url.Parse(c.base)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return nil, fmt.Errorf("cannot derive websocket URL from %q", c.base)
	}
	u.Path = epNotifications

	return NewNotifications(u.String(), c.token), nil
}

// Boards ---------------------------------------------------------------------

// List retrieves the board list from the service.
// The returned records carry canvas settings but no elements.
func (c *Client) List() ([]*pixe.Moodboard, error) {
	var res boardListResponse
	err := c.request("GET", epBoards, nil, &res)
	if err != nil {
		return nil, err
	}

	logging.Debug("List request returned %d boards", len(res.Moodboards))

	return res.Moodboards, nil
}

// Fetch retrieves the full record for one board,
// including all of its elements and the drawing layer.
func (c *Client) Fetch(id string) (*pixe.Moodboard, error) {
	var res boardResponse
	err := c.request("GET", fmt.Sprintf(epBoard, id), nil, &res)
	if err != nil {
		return nil, err
	}
	if res.Moodboard == nil {
		return nil, pixe.NewNotFound("no board with id %q", id)
	}

	return res.Moodboard, nil
}

// Images ---------------------------------------------------------------------

// UpdateImage applies a partial update to an image element.
func (c *Client) UpdateImage(boardID, imageID string, u pixe.ImageUpdate) error {
	return c.request("PATCH", fmt.Sprintf(epImage, boardID, imageID), u, nil)
}

// DeleteImage removes an image element from a board.
func (c *Client) DeleteImage(boardID, imageID string) error {
	return c.request("DELETE", fmt.Sprintf(epImage, boardID, imageID), nil, nil)
}

// UploadImage sends image data as a multipart request and places the
// new element at the given initial bounds.
func (c *Client) UploadImage(boardID string, r io.Reader, filename, title, source string, at pixe.Rect) (*pixe.ImageElement, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	_, err = io.Copy(fw, r)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{
		"title":  title,
		"source": source,
		"x":      fmt.Sprintf("%v", at.X),
		"y":      fmt.Sprintf("%v", at.Y),
		"width":  fmt.Sprintf("%v", at.W),
		"height": fmt.Sprintf("%v", at.H),
	}
	for k, v := range fields {
		err = mw.WriteField(k, v)
		if err != nil {
			return nil, err
		}
	}
	err = mw.Close()
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest("POST", fmt.Sprintf(epImages, boardID), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var res imageResponse
	err = c.do(req, &res)
	if err != nil {
		return nil, err
	}

	return res.Image, nil
}

// ImportImage places a new image element that refers to an external URL.
// The service downloads and stores a copy of the image.
func (c *Client) ImportImage(boardID, imageURL string, at pixe.Rect) (*pixe.ImageElement, error) {
	payload := importRequest{
		ImageURL: imageURL,
		X:        at.X,
		Y:        at.Y,
		Width:    at.W,
		Height:   at.H,
	}

	var res imageResponse
	err := c.request("POST", fmt.Sprintf(epImageImport, boardID), payload, &res)
	if err != nil {
		return nil, err
	}

	return res.Image, nil
}

// Texts ----------------------------------------------------------------------

// CreateText creates a text element and returns the stored element with
// its server-assigned id.
func (c *Client) CreateText(boardID string, t *pixe.TextElement) (*pixe.TextElement, error) {
	var res textResponse
	err := c.request("POST", fmt.Sprintf(epTexts, boardID), t, &res)
	if err != nil {
		return nil, err
	}
	if res.Text == nil {
		return nil, fmt.Errorf("create request returned no element")
	}

	return res.Text, nil
}

// UpdateText applies a partial update to a text element.
func (c *Client) UpdateText(boardID, textID string, u pixe.TextUpdate) error {
	return c.request("PATCH", fmt.Sprintf(epText, boardID, textID), u, nil)
}

// DeleteText removes a text element from a board.
func (c *Client) DeleteText(boardID, textID string) error {
	return c.request("DELETE", fmt.Sprintf(epText, boardID, textID), nil, nil)
}

// Drawing layer --------------------------------------------------------------

// SaveDrawingLayer replaces the board's rasterized drawing layer.
func (c *Client) SaveDrawingLayer(boardID, encoded string) error {
	payload := drawingRequest{DrawingLayer: encoded}
	return c.request("PUT", fmt.Sprintf(epDrawing, boardID), payload, nil)
}

// ----------------------------------------------------------------------------

func (c *Client) request(method, endpoint string, payload, dst interface{}) error {
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		err := enc.Encode(payload)
		if err != nil {
			return err
		}
		body = buf
	}

	req, err := c.newRequest(method, endpoint, body)
	if err != nil {
		return fmt.Errorf("could not prepare API request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, dst)
}

func (c *Client) do(req *http.Request, dst interface{}) error {
	logging.Debug("API %v %v", req.Method, req.URL)

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %v", err)
	}
	defer res.Body.Close()

	// must read body to end
	// https://golang.org/pkg/net/http/#Client.Do
	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return err
	}

	logging.Debug("API request %v %v returned status %v", req.Method, req.URL, res.StatusCode)

	if res.StatusCode == http.StatusNotFound {
		return pixe.NewNotFound("%v %v returned status 404", req.Method, req.URL)
	}

	err = pixe.ExpectOK(res, "API request failed")
	if err != nil {
		msg := strings.TrimSpace(string(data))
		if msg != "" {
			return pixe.Wrap(err, msg)
		}
		return err
	}

	if dst != nil {
		dec := json.NewDecoder(bytes.NewBuffer(data))
		err = dec.Decode(dst)
		if err != nil {
			return fmt.Errorf("failed to read API response: %v", err)
		}
	}

	return nil
}

func (c *Client) newRequest(method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.base+endpoint, body)
	if err != nil {
		return nil, err
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.token))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pixe")

	return req, nil
}
