package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SetupSSEHeaders 设置Server-Sent Events响应头
func SetupSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// SendSSERetry 告知客户端断线后的重连间隔
func SendSSERetry(w http.ResponseWriter, flusher http.Flusher, d time.Duration) error {
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", d.Milliseconds()); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// SendSSEEvent 发送带事件类型的SSE消息，写入失败时返回错误以便调用方结束推送
func SendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal sse %s: %w", event, err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return fmt.Errorf("write sse %s: %w", event, err)
	}
	flusher.Flush()
	return nil
}
