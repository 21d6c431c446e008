package controllers

import (
	"meal-coupon/coupon"
	"meal-coupon/registration"
	"meal-coupon/web/storage"

	"go.uber.org/zap"
)

// Handlers serves the registration, scanning and admin endpoints.
type Handlers struct {
	svc        *registration.Service
	codec      *coupon.Codec
	uploads    storage.ObjectStore
	qrEndpoint string
	maxUpload  int64
	log        *zap.Logger
}

type Option func(*Handlers)

func WithLogger(l *zap.Logger) Option { return func(h *Handlers) { h.log = l } }

// WithQRImageEndpoint sets the hosted QR image service used in responses and emails.
func WithQRImageEndpoint(endpoint string) Option {
	return func(h *Handlers) { h.qrEndpoint = endpoint }
}

func WithMaxUploadSize(n int64) Option { return func(h *Handlers) { h.maxUpload = n } }

const defaultMaxUpload = 5 << 20

func New(svc *registration.Service, codec *coupon.Codec, uploads storage.ObjectStore, opts ...Option) *Handlers {
	h := &Handlers{
		svc:       svc,
		codec:     codec,
		uploads:   uploads,
		maxUpload: defaultMaxUpload,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
