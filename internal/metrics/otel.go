// Copyright 2026 The RSPCore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var meter = otel.Meter("rspcore")

const (
	packetNameKey = "packet"
	directionKey  = "direction"
	vcontKindKey  = "vcont_action"
	hostioOpKey   = "vfile_op"
)

var (
	packetAttrSets sync.Map
	vcontAttrSets  sync.Map
	hostioAttrSets sync.Map
)

func attrSet(cache *sync.Map, key string, attrs ...attribute.KeyValue) metric.MeasurementOption {
	if v, ok := cache.Load(key); ok {
		return v.(metric.MeasurementOption)
	}
	opt := metric.WithAttributeSet(attribute.NewSet(attrs...))
	actual, _ := cache.LoadOrStore(key, opt)
	return actual.(metric.MeasurementOption)
}

// otelHandle implements Handle atop go.opentelemetry.io/otel/metric
// instruments, registered with a Prometheus exporter so the counters and
// histograms below show up on the rspcore "/metrics" endpoint cmd serves.
type otelHandle struct {
	packetCount   metric.Int64Counter
	packetLatency metric.Float64Histogram
	retransmits   metric.Int64Counter
	vcontActions  metric.Int64Counter
	queueDepth    metric.Int64Gauge
	hostioOps     metric.Int64Counter
	hostioBytes   metric.Int64Counter
	readaheadHit  metric.Int64Counter
	readaheadMiss metric.Int64Counter

	sockRTT         metric.Int64Gauge
	sockRTTVar      metric.Int64Gauge
	sockRetransmits metric.Int64Gauge
	sockCwnd        metric.Int64Gauge
}

// NewOTelHandle builds a Handle wired to an OTel MeterProvider backed by a
// Prometheus exporter, and returns an http.Handler for the caller to mount
// at e.g. "/metrics" (cmd does this the way conniver/sockstats's
// pkg/exporter registers its tcpinfo gauges).
func NewOTelHandle() (Handle, http.Handler, error) {
	exporter, err := otelprometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	h := &otelHandle{}
	var errs []error
	must := func(name string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	var e error
	h.packetCount, e = meter.Int64Counter("rsp.packet.count")
	must("packet.count", e)
	h.packetLatency, e = meter.Float64Histogram("rsp.packet.latency_seconds")
	must("packet.latency", e)
	h.retransmits, e = meter.Int64Counter("rsp.framer.retransmits")
	must("framer.retransmits", e)
	h.vcontActions, e = meter.Int64Counter("rsp.execctl.vcont_actions")
	must("execctl.vcont_actions", e)
	h.queueDepth, e = meter.Int64Gauge("rsp.notify.stop_reply_queue_depth")
	must("notify.queue_depth", e)
	h.hostioOps, e = meter.Int64Counter("rsp.hostio.ops")
	must("hostio.ops", e)
	h.hostioBytes, e = meter.Int64Counter("rsp.hostio.bytes")
	must("hostio.bytes", e)
	h.readaheadHit, e = meter.Int64Counter("rsp.hostio.readahead_hits")
	must("hostio.readahead_hits", e)
	h.readaheadMiss, e = meter.Int64Counter("rsp.hostio.readahead_misses")
	must("hostio.readahead_misses", e)
	h.sockRTT, e = meter.Int64Gauge("rsp.socket.rtt_micros")
	must("socket.rtt_micros", e)
	h.sockRTTVar, e = meter.Int64Gauge("rsp.socket.rtt_var_micros")
	must("socket.rtt_var_micros", e)
	h.sockRetransmits, e = meter.Int64Gauge("rsp.socket.retransmits")
	must("socket.retransmits", e)
	h.sockCwnd, e = meter.Int64Gauge("rsp.socket.cwnd_segments")
	must("socket.cwnd_segments", e)

	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("creating rspcore instruments: %v", errs)
	}

	return h, promhttp.Handler(), nil
}

func (h *otelHandle) PacketCount(ctx context.Context, name string, dir PacketDirection, inc int64) {
	h.packetCount.Add(ctx, inc, attrSet(&packetAttrSets, name+"|"+string(dir),
		attribute.String(packetNameKey, name), attribute.String(directionKey, string(dir))))
}

func (h *otelHandle) PacketLatency(ctx context.Context, name string, seconds float64) {
	h.packetLatency.Record(ctx, seconds, attrSet(&packetAttrSets, "latency|"+name,
		attribute.String(packetNameKey, name)))
}

func (h *otelHandle) RetransmitCount(ctx context.Context, inc int64) {
	h.retransmits.Add(ctx, inc)
}

func (h *otelHandle) VContActionCount(ctx context.Context, kind string, inc int64) {
	h.vcontActions.Add(ctx, inc, attrSet(&vcontAttrSets, kind, attribute.String(vcontKindKey, kind)))
}

func (h *otelHandle) StopReplyQueueDepth(ctx context.Context, depth int64) {
	h.queueDepth.Record(ctx, depth)
}

func (h *otelHandle) HostIOOpCount(ctx context.Context, op string, inc int64) {
	h.hostioOps.Add(ctx, inc, attrSet(&hostioAttrSets, "op|"+op, attribute.String(hostioOpKey, op)))
}

func (h *otelHandle) HostIOBytesCount(ctx context.Context, op string, inc int64) {
	h.hostioBytes.Add(ctx, inc, attrSet(&hostioAttrSets, "bytes|"+op, attribute.String(hostioOpKey, op)))
}

func (h *otelHandle) ReadaheadHitCount(ctx context.Context, inc int64) {
	h.readaheadHit.Add(ctx, inc)
}

func (h *otelHandle) ReadaheadMissCount(ctx context.Context, inc int64) {
	h.readaheadMiss.Add(ctx, inc)
}

func (h *otelHandle) SocketHealth(ctx context.Context, rttMicros, rttVarMicros int64, retransmits, cwnd uint32) {
	h.sockRTT.Record(ctx, rttMicros)
	h.sockRTTVar.Record(ctx, rttVarMicros)
	h.sockRetransmits.Record(ctx, int64(retransmits))
	h.sockCwnd.Record(ctx, int64(cwnd))
}
