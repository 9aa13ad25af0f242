// Package storage holds what the snapshot publishers share: every view is
// written as one JSON document keyed by its view name.
package storage

import (
	"encoding/json"
	"fmt"

	"tokendict/internal/domain"
)

// ViewPayload 单个视图的 JSON
type ViewPayload struct {
	Name    string
	Payload []byte
}

// EncodeViews 按固定顺序序列化全部视图；空视图编码为 []
func EncodeViews(dir *domain.Directory) ([]ViewPayload, error) {
	if dir == nil {
		return nil, fmt.Errorf("encode views: nil directory")
	}
	out := make([]ViewPayload, 0, len(domain.Views()))
	for _, name := range domain.Views() {
		entries, _ := dir.View(name)
		if entries == nil {
			entries = []domain.TokenEntry{}
		}
		b, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("encode view %s: %w", name, err)
		}
		out = append(out, ViewPayload{Name: name, Payload: b})
	}
	return out, nil
}

// EncodeDexBlob 序列化 DEX 诊断数据
func EncodeDexBlob(items []domain.DexBlobItem) ([]byte, error) {
	if items == nil {
		items = []domain.DexBlobItem{}
	}
	return json.Marshal(items)
}

// DecodeView 解析已发布的视图
func DecodeView(b []byte) ([]domain.TokenEntry, error) {
	var entries []domain.TokenEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode view: %w", err)
	}
	return entries, nil
}
