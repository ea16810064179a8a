package pixe

import (
	"fmt"
	"net/http"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	err := NewNotFound("no board with id %q", "abc")
	if !IsNotFound(err) {
		t.Errorf("expected a NotFound error")
	}

	err = fmt.Errorf("some other error")
	if IsNotFound(err) {
		t.Errorf("plain error misdetected as NotFound")
	}

	if IsNotFound(nil) {
		t.Errorf("nil misdetected as NotFound")
	}
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	err := Wrap(inner, "context %v", 42)
	if err.Error() != "context 42: inner" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestExpectStatus(t *testing.T) {
	res := &http.Response{StatusCode: http.StatusOK}
	if ExpectOK(res, "request failed") != nil {
		t.Errorf("status 200 should pass ExpectOK")
	}

	res.StatusCode = http.StatusInternalServerError
	if ExpectOK(res, "request failed") == nil {
		t.Errorf("status 500 should fail ExpectOK")
	}

	res.StatusCode = http.StatusNotFound
	err := ExpectOK(res, "request failed")
	if !IsNotFound(err) {
		t.Errorf("status 404 should yield a NotFound error, got %v", err)
	}

	res.StatusCode = http.StatusCreated
	if ExpectStatus(res, http.StatusCreated, "") != nil {
		t.Errorf("matching status should pass ExpectStatus")
	}
}
