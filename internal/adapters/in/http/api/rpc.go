package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bnema/acms/internal/adapters/dto"
	"github.com/bnema/acms/internal/domain"
)

const (
	jsonRPCVersion  = "2.0"
	protocolVersion = "2025-03-26"
	serverName      = "acms"
)

// handleRPC serves JSON-RPC 2.0 requests. Clients accepting
// text/event-stream get the response as a single SSE message.
func (s *Server) handleRPC(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	var req dto.RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return s.writeRPC(c, rpcError(nil, dto.RPCParseError, "parse error", nil))
	}
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		return s.writeRPC(c, rpcError(req.ID, dto.RPCInvalidRequest, "invalid request", nil))
	}

	// Notifications carry no ID and get no response body.
	if len(req.ID) == 0 || bytes.Equal(req.ID, []byte("null")) {
		return c.NoContent(http.StatusAccepted)
	}

	return s.writeRPC(c, s.dispatch(c, req))
}

func (s *Server) dispatch(c echo.Context, req dto.RPCRequest) dto.RPCResponse {
	switch req.Method {
	case "initialize":
		return rpcResult(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": serverName},
		})
	case "ping":
		return rpcResult(req.ID, map[string]any{})
	case "tools/list":
		return rpcResult(req.ID, s.toolList())
	case "tools/call":
		return s.rpcCall(c, req)
	default:
		return rpcError(req.ID, dto.RPCMethodNotFound, fmt.Sprintf("method not found: %s", req.Method), nil)
	}
}

// rpcCall runs a tool. Malformed arguments and unknown tools are protocol
// errors; failures of the operation itself are tool results with isError set.
func (s *Server) rpcCall(c echo.Context, req dto.RPCRequest) dto.RPCResponse {
	var params dto.ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return rpcError(req.ID, dto.RPCInvalidParams, "params must name a tool", nil)
	}

	result, err := s.call(c.Request().Context(), params.Name, params.Arguments)
	if err != nil {
		body := errorBody(err)
		switch kindOf(err) {
		case domain.KindValidation:
			return rpcError(req.ID, dto.RPCInvalidParams, err.Error(), &body)
		case domain.KindNotFound:
			if _, known := s.tools.byName[params.Name]; !known {
				return rpcError(req.ID, dto.RPCInvalidParams, err.Error(), &body)
			}
		}
		return rpcResult(req.ID, toolResult(dto.ErrorResponse{Error: body}, true))
	}
	return rpcResult(req.ID, toolResult(result, false))
}

func toolResult(v any, isError bool) dto.ToolCallResult {
	text, err := json.Marshal(v)
	if err != nil {
		text = []byte(err.Error())
	}
	return dto.ToolCallResult{
		Content:           []dto.ToolContent{{Type: "text", Text: string(text)}},
		StructuredContent: v,
		IsError:           isError,
	}
}

func rpcResult(id json.RawMessage, result any) dto.RPCResponse {
	return dto.RPCResponse{JSONRPC: jsonRPCVersion, ID: rpcID(id), Result: result}
}

func rpcError(id json.RawMessage, code int, message string, data *dto.ErrorBody) dto.RPCResponse {
	return dto.RPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      rpcID(id),
		Error:   &dto.RPCError{Code: code, Message: message, Data: data},
	}
}

func rpcID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func (s *Server) writeRPC(c echo.Context, resp dto.RPCResponse) error {
	if !strings.Contains(c.Request().Header.Get(echo.HeaderAccept), "text/event-stream") {
		return c.JSON(http.StatusOK, resp)
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}
