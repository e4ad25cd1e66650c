package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeUpdateBookStockEvent 测试事件解码
func TestDecodeUpdateBookStockEvent(t *testing.T) {
	t.Run("正常事件", func(t *testing.T) {
		event, err := DecodeUpdateBookStockEvent([]byte(`{"id": 42, "stock": 7}`))
		require.NoError(t, err)
		assert.Equal(t, uint(42), event.ID)
		assert.Equal(t, 7, event.Stock)
	})

	t.Run("负增量", func(t *testing.T) {
		event, err := DecodeUpdateBookStockEvent([]byte(`{"id": 1, "stock": -3}`))
		require.NoError(t, err)
		assert.Equal(t, -3, event.Stock)
	})

	t.Run("零增量是合法空操作", func(t *testing.T) {
		event, err := DecodeUpdateBookStockEvent([]byte(`{"id": 1, "stock": 0}`))
		require.NoError(t, err)
		assert.Equal(t, 0, event.Stock)
	})

	t.Run("未知字段忽略", func(t *testing.T) {
		event, err := DecodeUpdateBookStockEvent([]byte(`{"id": 5, "stock": 2, "source": "warehouse"}`))
		require.NoError(t, err)
		assert.Equal(t, uint(5), event.ID)
	})

	t.Run("JSON非法", func(t *testing.T) {
		_, err := DecodeUpdateBookStockEvent([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("事件体为空", func(t *testing.T) {
		_, err := DecodeUpdateBookStockEvent(nil)
		assert.Error(t, err)
	})

	t.Run("缺少id字段", func(t *testing.T) {
		_, err := DecodeUpdateBookStockEvent([]byte(`{"stock": 3}`))
		assert.Error(t, err)
	})

	t.Run("缺少stock字段", func(t *testing.T) {
		_, err := DecodeUpdateBookStockEvent([]byte(`{"id": 3}`))
		assert.Error(t, err)
	})

	t.Run("id为0非法", func(t *testing.T) {
		_, err := DecodeUpdateBookStockEvent([]byte(`{"id": 0, "stock": 3}`))
		assert.Error(t, err)
	})

	t.Run("id为负数非法", func(t *testing.T) {
		_, err := DecodeUpdateBookStockEvent([]byte(`{"id": -1, "stock": 3}`))
		assert.Error(t, err)
	})

	t.Run("id越界", func(t *testing.T) {
		_, err := DecodeUpdateBookStockEvent([]byte(`{"id": 4294967296, "stock": 3}`))
		assert.Error(t, err)
	})

	t.Run("stock越界", func(t *testing.T) {
		_, err := DecodeUpdateBookStockEvent([]byte(`{"id": 1, "stock": 9999999999}`))
		assert.Error(t, err)
	})
}

// TestUpdateBookStockEvent_Encode 测试编码与解码往返
func TestUpdateBookStockEvent_Encode(t *testing.T) {
	event := &UpdateBookStockEvent{ID: 9, Stock: -5}
	body, err := event.Encode()
	require.NoError(t, err)

	decoded, err := DecodeUpdateBookStockEvent(body)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}
