package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/xpttools/xpt/pkg/core"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server manages the streaming decoder
type Server struct {
	core    *core.Core
	encoder *json.Encoder
	decoder *json.Decoder
}

// NewServer creates a new streaming server
func NewServer(c *core.Core, in io.Reader, out io.Writer) *Server {
	return &Server{
		core:    c,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
	}
}

// Run starts the server main loop
func (s *Server) Run(ctx context.Context) error {
	// Send ready signal
	s.sendReady()

	// Use buffered channels for incoming requests
	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Process requests until stdin closes or context cancels
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending requests before handling EOF
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("error", "malformed request: "+err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	switch req.Type {
	case "decode":
		s.handleDecode(ctx, req.Payload)
	case "decode_batch":
		s.handleDecodeBatch(ctx, req.Payload)
	case "list":
		s.handleList()
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	s.send("ready", ReadyData{Version: Version})
}

func (s *Server) handleDecode(ctx context.Context, payload json.RawMessage) {
	var p DecodePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("decode", err.Error())
		return
	}

	result, err := s.core.Decode(ctx, p.Content, p.Source)
	if err != nil {
		s.sendError("decode", err.Error())
		return
	}
	s.send("decode", result)
}

func (s *Server) handleDecodeBatch(ctx context.Context, payload json.RawMessage) {
	var p DecodeBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("decode_batch", err.Error())
		return
	}

	result, err := s.core.DecodeBatch(ctx, p.Items)
	if err != nil {
		s.sendError("decode_batch", err.Error())
		return
	}
	s.send("decode_batch", result)
}

func (s *Server) handleList() {
	infos, err := s.core.Datasets()
	if err != nil {
		s.sendError("list", err.Error())
		return
	}
	s.send("list", infos)
}

func (s *Server) send(reqType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(reqType, err.Error())
		return
	}
	s.encoder.Encode(Response{
		Success: true,
		Type:    reqType,
		Data:    data,
	})
}

func (s *Server) sendError(reqType, msg string) {
	s.encoder.Encode(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}
