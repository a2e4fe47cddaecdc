package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorUsesHTTPStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "rid-1")

	Error(c, CodeNotFound, "missing")

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404 got %d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.StatusCode != CodeNotFound || body.Msg != "missing" {
		t.Fatalf("unexpected body: %+v", body)
	}
	data, ok := body.Data.(map[string]interface{})
	if !ok || data["request_id"] != "rid-1" {
		t.Fatalf("request_id should be attached: %+v", body.Data)
	}
}

func TestCreatedStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Created(c, gin.H{"id": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201 got %d", w.Code)
	}
}

func TestPlainText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	PlainText(c, http.StatusNotFound, "Tracking link not found")
	if w.Code != http.StatusNotFound || w.Body.String() != "Tracking link not found" {
		t.Fatalf("unexpected response: %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type: %s", ct)
	}
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 20, 41)
	if p.TotalPage != 3 || p.Page != 2 || p.Total != 41 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if BuildPagination(1, 0, 10).TotalPage != 0 {
		t.Fatalf("zero page size should yield zero pages")
	}
}

func TestHTTPStatusUnknownCode(t *testing.T) {
	if HTTPStatus(12345) != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to 500")
	}
}

func TestAbortLocalizesAndStops(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reached := false
	r.GET("/x", func(c *gin.Context) {
		Abort(c, CodeTooManyRequests, "error.rate_limited", 7)
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x?lang=en-US", nil)
	r.ServeHTTP(w, req)

	if reached {
		t.Fatalf("handler chain should stop after Abort")
	}
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429 got %d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Msg != "Too many requests, retry in 7 seconds" {
		t.Fatalf("unexpected msg: %q", body.Msg)
	}
}

func TestSuccessWithPageEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SuccessWithPage(c, []int{1}, BuildPagination(1, 20, 1))

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["msg"] != "success" || body["pagination"] == nil || body["status_code"] != float64(0) {
		t.Fatalf("unexpected page body: %v", body)
	}
}
