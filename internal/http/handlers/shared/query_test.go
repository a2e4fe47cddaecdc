package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/realcpa-hub/internal/repository"

	"github.com/gin-gonic/gin"
)

func newQueryContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestBindEventListQuery(t *testing.T) {
	c, _ := newQueryContext("/events?page=0&page_size=999&offer_id=3&status=pending&created_from=2026-03-01&created_to=2026-03-02T00:00:00Z")
	q, filter, ok := BindEventListQuery(c)
	if !ok {
		t.Fatalf("bind should succeed")
	}
	if q.Page != 1 || q.PageSize != repository.MaxListPageSize {
		t.Fatalf("pagination not normalized: %+v", q.PageQuery)
	}
	if filter.OfferID != 3 || filter.Status != "pending" || filter.CreatedFrom == nil || filter.CreatedTo == nil {
		t.Fatalf("unexpected filter: %+v", filter)
	}
	if filter.CreatedFrom.Day() != 1 || filter.CreatedTo.Day() != 2 {
		t.Fatalf("dates parsed incorrectly: %v %v", filter.CreatedFrom, filter.CreatedTo)
	}
}

func TestBindEventListQueryRejectsBadInput(t *testing.T) {
	for _, target := range []string{"/events?offer_id=abc", "/events?created_from=03/01/2026"} {
		c, w := newQueryContext(target)
		if _, _, ok := BindEventListQuery(c); ok {
			t.Fatalf("%s should be rejected", target)
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s want 400 got %d", target, w.Code)
		}
	}
}

func TestOfferListQueryFilter(t *testing.T) {
	c, _ := newQueryContext("/offers?status=active,paused&search=%20shoes%20&page_size=5")
	var q OfferListQuery
	if !BindQuery(c, &q) {
		t.Fatalf("bind should succeed")
	}
	filter := q.Filter()
	if len(filter.Statuses) != 2 || filter.Search != "shoes" || filter.PageSize != 5 || filter.Page != 1 {
		t.Fatalf("unexpected filter: %+v", filter)
	}
	if p := q.Pagination(11); p.TotalPage != 3 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
}

func TestCurrentUserID(t *testing.T) {
	c, w := newQueryContext("/me")
	if _, ok := CurrentUserID(c); ok || w.Code != http.StatusUnauthorized {
		t.Fatalf("missing user should be 401, got %d", w.Code)
	}
	c, _ = newQueryContext("/me")
	c.Set("user_id", uint(42))
	if id, ok := CurrentUserID(c); !ok || id != 42 {
		t.Fatalf("unexpected id: %d %v", id, ok)
	}
}

func TestParseIDParam(t *testing.T) {
	c, w := newQueryContext("/x/0")
	c.Params = gin.Params{{Key: "id", Value: "0"}}
	if _, ok := ParseIDParam(c, "id"); ok || w.Code != http.StatusBadRequest {
		t.Fatalf("zero id should be rejected")
	}
	c, _ = newQueryContext("/x/7")
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	if id, ok := ParseIDParam(c, "id"); !ok || id != 7 {
		t.Fatalf("unexpected id %d", id)
	}
}
