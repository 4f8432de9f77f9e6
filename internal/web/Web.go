// Copyright 2024 Jack Bister
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

package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jackbister/leefsuck/internal/config"
	"github.com/jackbister/leefsuck/internal/events"
	"github.com/jackbister/leefsuck/internal/util"
	"github.com/jackbister/leefsuck/pkg/leefsuck/leef"
)

type Web interface {
	Serve() error
}

type webImpl struct {
	cfg       *config.Config
	eventRepo events.Repository
	publisher events.EventPublisher

	logger *slog.Logger
}

func NewWeb(cfg *config.Config, eventRepo events.Repository, publisher events.EventPublisher, logger *slog.Logger) Web {
	return &webImpl{
		cfg:       cfg,
		eventRepo: eventRepo,
		publisher: publisher,
		logger:    logger,
	}
}

type parseRequest struct {
	Line             string `json:"line" binding:"required"`
	PreserveRawEvent bool   `json:"preserveRawEvent"`
}

type receiveEventsRequest struct {
	Host   string   `json:"host"`
	Source string   `json:"source"`
	Lines  []string `json:"lines" binding:"required"`
}

func (wi *webImpl) Serve() error {
	r := wi.setupRouter()
	return r.Run(wi.cfg.Web.Address)
}

func (wi *webImpl) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(util.NewGinSlogger(slog.LevelInfo, wi.logger), gin.Recovery())
	r.SetTrustedProxies(nil)

	r.POST("/api/v1/parse", func(c *gin.Context) {
		var req parseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to decode JSON: " + err.Error()})
			return
		}
		fields, err := leef.ToMap(req.Line, req.PreserveRawEvent)
		if err != nil {
			if errors.Is(err, leef.ErrNotLeef) || errors.Is(err, leef.ErrMalformedLeef) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, fields)
	})

	r.POST("/api/v1/receiveEvents", func(c *gin.Context) {
		var req receiveEventsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to decode JSON: " + err.Error()})
			return
		}
		host := req.Host
		if host == "" {
			host = wi.cfg.HostName
		}
		for i, line := range req.Lines {
			wi.publisher.PublishEvent(events.RawEvent{
				Raw:    line,
				Host:   host,
				Source: req.Source,
				Offset: int64(i),
			})
		}
		c.JSON(http.StatusOK, gin.H{"received": len(req.Lines)})
	})

	r.GET("/api/v1/events", func(c *gin.Context) {
		limit := 100
		if limitStr, ok := c.GetQuery("limit"); ok {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = parsed
		}
		var evts []events.Event
		var err error
		if query, ok := c.GetQuery("query"); ok {
			evts, err = wi.eventRepo.Search(query)
			if err == nil && len(evts) > limit {
				evts = evts[:limit]
			}
		} else {
			evts, err = wi.eventRepo.GetRecent(limit)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		type eventResponse struct {
			Id        int64             `json:"id"`
			Raw       string            `json:"raw"`
			Timestamp string            `json:"timestamp"`
			Host      string            `json:"host"`
			Source    string            `json:"source"`
			Fields    map[string]string `json:"fields"`
		}
		ret := make([]eventResponse, len(evts))
		for i, evt := range evts {
			ret[i] = eventResponse{
				Id:        evt.Id,
				Raw:       evt.Raw,
				Timestamp: evt.Timestamp.UTC().Format(time.RFC3339),
				Host:      evt.Host,
				Source:    evt.Source,
				Fields:    evt.Fields,
			}
		}
		c.JSON(http.StatusOK, gin.H{"events": ret})
	})

	return r
}
