package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"chargen/src/catalog"
	"chargen/src/config"
	"chargen/src/database"
	"chargen/src/session"
)

type Server struct {
	cat  *catalog.Catalog
	sess *session.Session
	db   *database.DB

	listener   net.Listener
	server     *http.Server
	socketPath string

	mu    sync.RWMutex
	stats map[string]interface{}
}

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// NewServer creates a new JSON-RPC daemon server
func NewServer(dbPath string, settings *config.Settings) (*Server, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	db, err := database.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sess := session.New(cat, settings)

	// Reload persisted history so commits survive restarts
	if entries, err := db.LoadHistory(); err != nil {
		log.Printf("Failed to load persisted history: %v", err)
	} else if len(entries) > 0 {
		if data, err := historyEnvelope(entries); err == nil {
			if _, _, err := sess.ImportHistory(data); err != nil {
				log.Printf("Failed to restore persisted history: %v", err)
			}
		}
	}

	socketPath, err := config.GetSocketPath()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to resolve socket path: %w", err)
	}

	return &Server{
		cat:        cat,
		sess:       sess,
		db:         db,
		socketPath: socketPath,
		stats:      make(map[string]interface{}),
	}, nil
}

// Start begins listening for JSON-RPC requests
func (s *Server) Start() error {
	// Remove old socket if exists
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0660); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("JSON-RPC server listening on %s", s.socketPath)

	go s.server.Serve(listener)

	return nil
}

// Stop gracefully shuts down the server, flushing history to disk first.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.db.SaveHistory(s.sess.History()); err != nil {
		log.Printf("Failed to persist history on shutdown: %v", err)
	}

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	if s.listener != nil {
		s.listener.Close()
	}

	os.Remove(s.socketPath)

	s.sess.Close()
	if s.db != nil {
		s.db.Close()
	}

	return nil
}

// ReloadCatalog rebuilds the catalog from disk, picking up user overrides.
// Session state is preserved; selections referencing removed options keep
// rendering nothing until changed.
func (s *Server) ReloadCatalog() error {
	catalog.Reset()
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to reload catalog: %w", err)
	}
	s.cat = cat
	s.sess.ReloadCatalog(cat)
	return nil
}

// handleRPC processes JSON-RPC requests
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, nil, -32700, "Parse error")
		return
	}

	if req.JSONRPC != "2.0" {
		s.writeError(w, req.ID, -32600, "Invalid Request")
		return
	}

	result, err := s.routeMethod(req.Method, req.Params)
	if err != nil {
		if rpcErr, ok := err.(*RPCError); ok {
			s.writeError(w, req.ID, rpcErr.Code, rpcErr.Message)
		} else {
			s.writeError(w, req.ID, -32603, err.Error())
		}
		return
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeError writes a JSON-RPC error response
func (s *Server) writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: &RPCError{
			Code:    code,
			Message: message,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
