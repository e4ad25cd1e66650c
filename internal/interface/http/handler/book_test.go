package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbook "github.com/critical/catalog-service/internal/application/book"
	"github.com/critical/catalog-service/internal/domain/book"
	apperrors "github.com/critical/catalog-service/pkg/errors"
)

// fakeBookService 内存版领域服务,只实现测试需要的行为
type fakeBookService struct {
	nextID uint
	books  map[uint]*book.Book
}

func newFakeBookService() *fakeBookService {
	return &fakeBookService{nextID: 1, books: make(map[uint]*book.Book)}
}

func (s *fakeBookService) CreateBook(_ context.Context, b *book.Book) (*book.Book, error) {
	for _, existing := range s.books {
		if existing.ISBN == b.ISBN {
			return nil, book.ErrISBNDuplicate
		}
	}
	b.ID = s.nextID
	s.nextID++
	s.books[b.ID] = b
	return b, nil
}

func (s *fakeBookService) GetBookByID(_ context.Context, id uint) (*book.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}

func (s *fakeBookService) GetBookByISBN(_ context.Context, isbn string) (*book.Book, error) {
	for _, b := range s.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (s *fakeBookService) GetBooksByTitle(_ context.Context, title string) ([]*book.Book, error) {
	var out []*book.Book
	for _, b := range s.books {
		if b.Title == title {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return nil, book.ErrBookNotFound
	}
	return out, nil
}

func (s *fakeBookService) GetBooksByOriginalTitle(_ context.Context, originalTitle string) ([]*book.Book, error) {
	var out []*book.Book
	for _, b := range s.books {
		if b.OriginalTitle == originalTitle {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return nil, book.ErrBookNotFound
	}
	return out, nil
}

func (s *fakeBookService) GetBooksBySynopsis(_ context.Context, _ string) ([]*book.Book, error) {
	return nil, book.ErrBookNotFound
}

func (s *fakeBookService) ListBooks(_ context.Context) ([]*book.Book, error) {
	out := make([]*book.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeBookService) ListAvailableBooks(_ context.Context) ([]*book.Book, error) {
	var out []*book.Book
	for _, b := range s.books {
		if b.Availability == book.Available && b.StockAvailable > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookService) SearchBooks(_ context.Context, _ book.SearchParams) ([]*book.Book, error) {
	return nil, book.ErrBookNotFound
}

func (s *fakeBookService) UpdateBook(_ context.Context, b *book.Book) error {
	if _, ok := s.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	s.books[b.ID] = b
	return nil
}

func (s *fakeBookService) DeleteBook(_ context.Context, id uint) error {
	if _, ok := s.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(s.books, id)
	return nil
}

// noopCache 不做任何缓存,全部回源
type noopCache struct{}

func (noopCache) Get(context.Context, uint) (*book.Book, error) { return nil, nil }
func (noopCache) Set(context.Context, *book.Book) error         { return nil }
func (noopCache) Delete(context.Context, uint) error            { return nil }

// apiResponse 统一响应结构(测试侧解析用)
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupRouter 组装图书路由(真实用例+内存服务)
func setupRouter() (*gin.Engine, *fakeBookService) {
	gin.SetMode(gin.TestMode)

	svc := newFakeBookService()
	cache := noopCache{}

	h := NewBookHandler(
		appbook.NewCreateBookUseCase(svc),
		appbook.NewUpdateBookUseCase(svc, cache),
		appbook.NewQueryBooksUseCase(svc, cache),
	)

	r := gin.New()
	v1 := r.Group("/v1/api")
	h.Register(v1)

	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) apiResponse {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// 业务错误也统一走200+错误码
	require.Equal(t, http.StatusOK, w.Code)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func validBookRequest(isbn string) map[string]interface{} {
	return map[string]interface{}{
		"title":           "明室",
		"original_title":  "La chambre claire",
		"isbn":            isbn,
		"availability":    3,
		"release_date":    "1980-01-01",
		"price":           4500,
		"stock_available": 100,
		"author_ids":      []uint{1},
	}
}

func TestBookHandler_CreateBook(t *testing.T) {
	r, _ := setupRouter()

	t.Run("正常创建", func(t *testing.T) {
		resp := doJSON(t, r, http.MethodPost, "/v1/api/book", validBookRequest("9787549555510"))
		require.Equal(t, 0, resp.Code, "创建应该成功: %s", resp.Message)

		var data map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.EqualValues(t, 1, data["id"])
		assert.Equal(t, "9787549555510", data["isbn"])
		assert.Equal(t, "AVAILABLE", data["availability"])
		assert.Equal(t, "45.00", data["price_display"])
	})

	t.Run("重复ISBN", func(t *testing.T) {
		resp := doJSON(t, r, http.MethodPost, "/v1/api/book", validBookRequest("9787549555510"))
		assert.Equal(t, apperrors.ErrCodeISBNDuplicate, resp.Code)
	})

	t.Run("缺少必填字段", func(t *testing.T) {
		req := validBookRequest("9780156013987")
		delete(req, "title")

		resp := doJSON(t, r, http.MethodPost, "/v1/api/book", req)
		assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
	})

	t.Run("非法日期格式", func(t *testing.T) {
		req := validBookRequest("9780156013987")
		req["release_date"] = "01/01/1980"

		resp := doJSON(t, r, http.MethodPost, "/v1/api/book", req)
		assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
	})
}

func TestBookHandler_GetBook(t *testing.T) {
	r, svc := setupRouter()

	created, err := svc.CreateBook(context.Background(), &book.Book{
		Title:          "百年孤独",
		ISBN:           "9787544253994",
		Availability:   book.Available,
		Price:          5500,
		StockAvailable: 10,
	})
	require.NoError(t, err)

	t.Run("正常获取", func(t *testing.T) {
		resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/api/book/%d", created.ID), nil)
		require.Equal(t, 0, resp.Code)

		var data map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "百年孤独", data["title"])
	})

	t.Run("不存在的ID", func(t *testing.T) {
		resp := doJSON(t, r, http.MethodGet, "/v1/api/book/9999", nil)
		assert.Equal(t, apperrors.ErrCodeBookNotFound, resp.Code)
	})

	t.Run("非法ID", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-1"} {
			resp := doJSON(t, r, http.MethodGet, "/v1/api/book/"+id, nil)
			assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code, "ID '%s' 应该被拒绝", id)
		}
	})
}

func TestBookHandler_UpdateBook(t *testing.T) {
	r, svc := setupRouter()

	created, err := svc.CreateBook(context.Background(), &book.Book{
		Title:          "旧标题",
		ISBN:           "9787544253994",
		Availability:   book.Available,
		Price:          5500,
		StockAvailable: 10,
	})
	require.NoError(t, err)

	t.Run("正常更新", func(t *testing.T) {
		req := validBookRequest("9787544253994")
		req["title"] = "新标题"

		resp := doJSON(t, r, http.MethodPut, fmt.Sprintf("/v1/api/book/%d", created.ID), req)
		require.Equal(t, 0, resp.Code, "更新应该成功: %s", resp.Message)

		got, err := svc.GetBookByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "新标题", got.Title)
	})

	t.Run("不存在的图书", func(t *testing.T) {
		resp := doJSON(t, r, http.MethodPut, "/v1/api/book/9999", validBookRequest("9780156013987"))
		assert.Equal(t, apperrors.ErrCodeBookNotFound, resp.Code)
	})
}

func TestBookHandler_DeleteBook(t *testing.T) {
	r, svc := setupRouter()

	created, err := svc.CreateBook(context.Background(), &book.Book{
		Title:          "待删除",
		ISBN:           "9787544253994",
		Availability:   book.Available,
		Price:          5500,
		StockAvailable: 10,
	})
	require.NoError(t, err)

	resp := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/v1/api/book/%d", created.ID), nil)
	require.Equal(t, 0, resp.Code)

	_, err = svc.GetBookByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	// 再删一次应该返回不存在
	resp = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/v1/api/book/%d", created.ID), nil)
	assert.Equal(t, apperrors.ErrCodeBookNotFound, resp.Code)
}

func TestBookHandler_SearchByISBN(t *testing.T) {
	r, svc := setupRouter()

	_, err := svc.CreateBook(context.Background(), &book.Book{
		Title:          "明室",
		ISBN:           "9787549555510",
		Availability:   book.Available,
		Price:          4500,
		StockAvailable: 5,
	})
	require.NoError(t, err)

	t.Run("命中", func(t *testing.T) {
		resp := doJSON(t, r, http.MethodGet, "/v1/api/searchBookByIsbn/9787549555510", nil)
		require.Equal(t, 0, resp.Code)
	})

	t.Run("未命中", func(t *testing.T) {
		resp := doJSON(t, r, http.MethodGet, "/v1/api/searchBookByIsbn/9780156013987", nil)
		assert.Equal(t, apperrors.ErrCodeBookNotFound, resp.Code)
	})
}

// fakeStockRequester 记录补货请求
type fakeStockRequester struct {
	bookID uint
	delta  int
	err    error
}

func (f *fakeStockRequester) RequestStock(_ context.Context, bookID uint, stockDelta int) error {
	if f.err != nil {
		return f.err
	}
	f.bookID = bookID
	f.delta = stockDelta
	return nil
}

func TestStockHandler_RequestStock(t *testing.T) {
	gin.SetMode(gin.TestMode)

	requester := &fakeStockRequester{}
	r := gin.New()
	v1 := r.Group("/v1/api")
	NewStockHandler(requester).Register(v1)

	t.Run("正常补货请求", func(t *testing.T) {
		resp := doJSON(t, r, http.MethodPost, "/v1/api/book/7/requestStock",
			map[string]interface{}{"stock": 25})
		require.Equal(t, 0, resp.Code)
		assert.EqualValues(t, 7, requester.bookID)
		assert.Equal(t, 25, requester.delta)
	})

	t.Run("数量必须为正数", func(t *testing.T) {
		resp := doJSON(t, r, http.MethodPost, "/v1/api/book/7/requestStock",
			map[string]interface{}{"stock": -3})
		assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
	})

	t.Run("发布失败", func(t *testing.T) {
		requester.err = apperrors.ErrMQError
		defer func() { requester.err = nil }()

		resp := doJSON(t, r, http.MethodPost, "/v1/api/book/7/requestStock",
			map[string]interface{}{"stock": 5})
		assert.Equal(t, apperrors.ErrCodeMQError, resp.Code)
	})
}
