// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package trace

import (
	"context"
	"github.com/google/uuid"
	"github.com/orbs-network/scribe/log"
	"net/http"
	"strconv"
	"time"
)

type entryPointKeyType string

const entryPointKey entryPointKeyType = "ep"
const RequestId = "request-id"

const RequestTraceName = "X-Tally-Trace-Name"
const RequestTraceId = "X-Tally-Trace-Id"
const RequestTraceCreated = "X-Tally-Trace-Created"

type Context struct {
	created   time.Time
	name      string
	requestId string
}

func NewContext(parent context.Context, name string) context.Context {
	ep := &Context{
		name:      name,
		created:   time.Now(),
		requestId: name + "-" + uuid.New().String(),
	}
	return context.WithValue(parent, entryPointKey, ep)
}

func PropagateContext(parent context.Context, tracingContext *Context) context.Context {
	return context.WithValue(parent, entryPointKey, tracingContext)
}

func FromContext(ctx context.Context) (e *Context, ok bool) {
	e, ok = ctx.Value(entryPointKey).(*Context)
	return
}

// requests without trace headers get a fresh entry point named after the path
func NewFromRequest(parent context.Context, r *http.Request) context.Context {
	name := r.Header.Get(RequestTraceName)
	id := r.Header.Get(RequestTraceId)
	if name == "" || id == "" {
		return NewContext(parent, r.URL.Path)
	}

	created := time.Now()
	if nanos, err := strconv.ParseInt(r.Header.Get(RequestTraceCreated), 10, 64); err == nil {
		created = time.Unix(0, nanos)
	}

	return PropagateContext(parent, &Context{
		name:      name,
		requestId: id,
		created:   created,
	})
}

func (c *Context) WriteTraceToRequest(r *http.Request) {
	r.Header.Set(RequestTraceName, c.name)
	r.Header.Set(RequestTraceId, c.requestId)
	r.Header.Set(RequestTraceCreated, strconv.FormatInt(c.created.UnixNano(), 10))
}

func (c *Context) RequestId() string {
	if c == nil {
		return ""
	}
	return c.requestId
}

func (c *Context) NestedFields() []*log.Field {
	if c == nil { // this can happen if the tracing.Context was never created, e.g. context logged doesn't have this context value
		return nil
	}

	return []*log.Field{
		log.String("entry-point", c.name),
		log.String(RequestId, c.requestId),
	}
}

func LogFieldFrom(ctx context.Context) *log.Field {
	if trace, ok := FromContext(ctx); ok {
		return &log.Field{Key: "trace", Nested: trace, Type: log.AggregateType}
	} else {
		return log.String("trace", "NO-CONTEXT")
	}
}
