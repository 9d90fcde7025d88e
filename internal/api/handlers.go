package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"
	"go.uber.org/zap"
)

// scoreRequest is the body of POST /scores and POST /performance. Inputs
// override the values already stored for the month.
type scoreRequest struct {
	PersonName       string           `json:"person_name"`
	PerformanceMonth string           `json:"performance_month"`
	Inputs           schema.RawInputs `json:"inputs"`
	Coefficient      *float64         `json:"egp_score"`
}

// autoCalculateRequest is the body of POST /auto-calculate.
type autoCalculateRequest struct {
	PersonName       string        `json:"person_name"`
	PerformanceMonth string        `json:"performance_month"`
	ID               schema.ItemID `json:"id"`
}

// requestConfig clones the base config for one request and applies person and month.
func (s *Server) requestConfig(person, month string) (*contract.Config, error) {
	cfg := s.baseCfg.Clone()
	cfg.Person = strings.TrimSpace(person)
	if cfg.Person == "" {
		return nil, &badRequest{msg: "person is required"}
	}
	if month = strings.TrimSpace(month); month != "" {
		if _, err := contract.ParseMonth(month); err != nil {
			return nil, &badRequest{msg: err.Error()}
		}
		cfg.Month = month
	}
	return cfg, nil
}

// engineCtx carries the request-scoped logger into the engine.
func (s *Server) engineCtx(c *gin.Context) context.Context {
	logger := s.logger.With(zap.String("request_id", c.GetString(requestIDKey)))
	return core.ContextWithLogger(c.Request.Context(), logger)
}

func (s *Server) recordStore() (contract.RecordStore, error) {
	if s.mgr == nil || s.mgr.GetRecordStore() == nil {
		return nil, core.ErrStoreUnavailable
	}
	return s.mgr.GetRecordStore(), nil
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if store, err := s.recordStore(); err == nil {
		if status, err := store.GetStatus(c.Request.Context()); err == nil {
			body["store"] = gin.H{"backend": status.Backend, "connected": status.Connected}
			if !status.Connected && status.Backend != string(schema.NoneBackend) {
				body["status"] = "degraded"
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleOperators(c *gin.Context) {
	ops, err := core.LoadRoster(s.engineCtx(c), s.mgr)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nonNil(ops)})
}

func (s *Server) handleUpdate(c *gin.Context) {
	if err := core.InvalidateRoster(s.mgr); err != nil {
		abortWithError(c, err)
		return
	}
	ops, err := core.LoadRoster(s.engineCtx(c), s.mgr)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.logger.Info("roster refreshed", zap.Int("operators", len(ops)))
	c.JSON(http.StatusOK, gin.H{"data": nonNil(ops)})
}

func (s *Server) handleTemplate(c *gin.Context) {
	cfg, err := s.requestConfig(c.Query("person"), "")
	if err != nil {
		abortWithError(c, err)
		return
	}
	store, err := s.recordStore()
	if err != nil {
		abortWithError(c, err)
		return
	}
	items, err := store.GetTemplate(c.Request.Context(), cfg.Person)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

func (s *Server) handleGetPerformance(c *gin.Context) {
	cfg, err := s.requestConfig(c.Query("person"), c.Query("month"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	store, err := s.recordStore()
	if err != nil {
		abortWithError(c, err)
		return
	}
	raw, err := store.GetRawInputs(c.Request.Context(), cfg.Person, cfg.Month)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if raw == nil {
		raw = schema.RawInputs{}
	}
	c.JSON(http.StatusOK, raw)
}

// sessionFromBody decodes a score request and opens the edited session.
func (s *Server) sessionFromBody(c *gin.Context) (*core.Session, error) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, &badRequest{msg: "invalid request body: " + err.Error()}
	}
	cfg, err := s.requestConfig(req.PersonName, req.PerformanceMonth)
	if err != nil {
		return nil, err
	}
	cfg.Edits = make(map[string]string, len(req.Inputs))
	for key := range req.Inputs {
		cfg.Edits[key] = req.Inputs.String(key)
	}
	cfg.Coefficient = req.Coefficient
	return core.GetSession(s.engineCtx(c), cfg, s.mgr)
}

func (s *Server) handleScores(c *gin.Context) {
	sess, err := s.sessionFromBody(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Sheet())
}

func (s *Server) handleSavePerformance(c *gin.Context) {
	sess, err := s.sessionFromBody(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	store, err := s.recordStore()
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := sess.Save(c.Request.Context(), store); err != nil {
		abortWithError(c, err)
		return
	}
	s.logger.Info("performance record saved",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("operator", sess.Operator.OperatorName),
		zap.String("month", sess.Month),
		zap.Float64("final_score", sess.Result.FinalScore))
	c.JSON(http.StatusOK, sess.Sheet())
}

func (s *Server) handleAutoCalculate(c *gin.Context) {
	var req autoCalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, &badRequest{msg: "invalid request body: " + err.Error()})
		return
	}
	cfg, err := s.requestConfig(req.PersonName, req.PerformanceMonth)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if req.ID == "" {
		abortWithError(c, &badRequest{msg: "id is required"})
		return
	}
	cfg.ItemID = req.ID

	sess, err := core.SetIndicatorMode(s.engineCtx(c), cfg, s.mgr)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Sheet())
}

func (s *Server) handleHistory(c *gin.Context) {
	cfg, err := s.requestConfig(c.Query("person"), "")
	if err != nil {
		abortWithError(c, err)
		return
	}
	views, err := core.GetHistoryViews(s.engineCtx(c), cfg, s.mgr)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(views))
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
