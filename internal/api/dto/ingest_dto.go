package dto

import (
	"encoding/json"
	"time"
)

// ==================== 请求 DTO ====================

// IngestRecordReq 抓取进程上报的单条观测
type IngestRecordReq struct {
	// 门店本地标识（至少其一）
	SKU           string `json:"sku"`
	StoreRecordID string `json:"store_record_id"`

	// 规范商品属性
	EAN          string `json:"ean"`
	AuxEAN       string `json:"aux_ean"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Manufacturer string `json:"manufacturer"`
	Category     string `json:"category"`
	Subcategory  string `json:"subcategory"`

	// 门店展示数据
	StoreName string          `json:"store_name"`
	URL       string          `json:"url"`
	Available *bool           `json:"available"`
	RawAttrs  json.RawMessage `json:"raw_attrs"`

	// 价格与促销
	ListPrice         *float64 `json:"list_price"`
	OfferPrice        *float64 `json:"offer_price"`
	OfferType         string   `json:"offer_type"`
	PromoType         string   `json:"promo_type"`
	PromoTextRegular  string   `json:"promo_text_regular"`
	PromoTextDiscount string   `json:"promo_text_discount"`
	PromoComments     string   `json:"promo_comments"`
	PromoTexts        []string `json:"promo_texts"`
}

// IngestBatchReq 一次抓取批次
// 生产者契约：每次抓取必须带一个本批次独有的 captured_at
type IngestBatchReq struct {
	StoreCode string   `json:"store_code" binding:"required"`
	StoreName string   `json:"store_name" binding:"required"`
	Province  string   `json:"province"`
	Branch    string   `json:"branch"`
	Regions   []string `json:"regions"`

	CapturedAt time.Time         `json:"captured_at" binding:"required"`
	Records    []IngestRecordReq `json:"records" binding:"required"`
}

// EanOverrideReq 追加一条 EAN 人工修正
type EanOverrideReq struct {
	StoreCode  string `json:"store_code" binding:"required"`
	NativeCode string `json:"native_code" binding:"required"`
	EAN        string `json:"ean" binding:"required,max=20"`
	Note       string `json:"note" binding:"max=512"`
}

// UpsertStoreReq 门店注册/更新
type UpsertStoreReq struct {
	Code     string   `json:"code" binding:"required,max=50"`
	Name     string   `json:"name" binding:"required,max=255"`
	Province string   `json:"province" binding:"max=100"`
	Branch   string   `json:"branch" binding:"max=100"`
	Regions  []string `json:"regions"`
}
