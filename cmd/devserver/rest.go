package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-chat-client/internal/auth"
	"go-chat-client/internal/event"
	"go-chat-client/internal/model"
)

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/v1/user/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/api/v1/user/{id}", s.handleGetUser)
		r.Get("/api/v1/user/{id}/friends", s.handleSearchFriends)
		r.Patch("/api/v1/user/{id}/friend", s.handleAddFriend)
		r.Delete("/api/v1/user/{id}/friend", s.handleRemoveFriend)
		r.Post("/api/v1/user/{id}/status", s.handleUserStatus)

		r.Get("/api/v1/chat/user/{userID}", s.handleUserChats)
		r.Post("/api/v1/chat/{userID}", s.handleCreateChat)
		r.Get("/api/v1/chat/{id}", s.handleGetChat)
		r.Delete("/api/v1/chat/{id}", s.handleDeleteChat)
		r.Patch("/api/v1/chat/{id}", s.handleSetStrict)
		r.Get("/api/v1/chat/{id}/messages", s.handleMessages)
		r.Patch("/api/v1/chat/{id}/update-name", s.handleUpdateName)
		r.Post("/api/v1/chat/{id}/add-member", s.handleAddMember)
		r.Post("/api/v1/chat/{id}/remove-member", s.handleRemoveMember)
		r.Post("/api/v1/chat/{id}/upload-file", s.handleUpload(model.KindFile))
		r.Post("/api/v1/chat/{id}/upload-image", s.handleUpload(model.KindImage))
	})

	r.Get("/ws", s.serveWs)
	return r
}

// requireAuth accepts the bearer token in the Authorization header or
// the token query parameter.
func (s *server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ""
		if h := r.Header.Get("Authorization"); h != "" {
			parts := strings.Split(h, " ")
			if len(parts) == 2 {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = r.URL.Query().Get("token")
		}
		if tokenString == "" {
			http.Error(w, "missing authentication token", http.StatusUnauthorized)
			return
		}
		if _, err := auth.Parse(tokenString, s.secret); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	u := s.state.userByEmail(req.Email)
	if u == nil {
		name, _, _ := strings.Cut(req.Email, "@")
		u = s.state.createUser(name, req.Email)
	}

	token, err := auth.Sign(auth.Claims{ID: u.ID, Name: u.Name}, s.secret)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"access_token": token,
		"_id":          u.ID,
		"name":         u.Name,
	})
}

func (s *server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u := s.state.user(chi.URLParam(r, "id"))
	if u == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, u)
}

func (s *server) handleSearchFriends(w http.ResponseWriter, r *http.Request) {
	u := s.state.user(chi.URLParam(r, "id"))
	if u == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	search := strings.ToLower(r.URL.Query().Get("searchText"))

	out := []model.User{}
	for _, fid := range u.FriendIDs {
		f := s.state.user(fid)
		if f == nil {
			continue
		}
		if search == "" || strings.Contains(strings.ToLower(f.Name), search) ||
			strings.Contains(strings.ToLower(f.Email), search) {
			out = append(out, *f)
		}
	}
	writeJSON(w, out)
}

func (s *server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	s.adjustFriend(w, r, true)
}

func (s *server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	s.adjustFriend(w, r, false)
}

func (s *server) adjustFriend(w http.ResponseWriter, r *http.Request, add bool) {
	var req struct {
		FriendID string `json:"friend_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !s.state.adjustFriend(chi.URLParam(r, "id"), req.FriendID, add) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *server) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	if !s.state.toggleStatus(chi.URLParam(r, "id")) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *server) handleUserChats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.state.userChats(chi.URLParam(r, "userID")))
}

func (s *server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "userID")
	var req struct {
		Members   []string `json:"members"`
		IsGroup   bool     `json:"is_group"`
		GroupName string   `json:"groupName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Members) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	chat := s.state.createChat(ownerID, req.Members, req.IsGroup, req.GroupName)
	for _, m := range chat.Members {
		s.hub.emit(userRoom(m), event.ChatCreated, chat)
	}
	writeJSON(w, chat)
}

func (s *server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	chat := s.state.chat(chi.URLParam(r, "id"))
	if chat == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, chat)
}

func (s *server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.state.deleteChat(id) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	// Explicit null so subscribers clear the conversation rather than
	// dropping an empty payload.
	s.hub.emit(chatRoom(id), event.ChatUpdated, json.RawMessage("null"))
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *server) handleSetStrict(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	chat, ok := s.state.toggleStrict(id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, chat)
}

func (s *server) handleMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}

	msgs, total, totalPages := s.state.page(id, page, limit)
	writeJSON(w, map[string]any{
		"messages":   msgs,
		"total":      total,
		"totalPages": totalPages,
	})
}

func (s *server) handleUpdateName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	chat, ok := s.state.renameChat(chi.URLParam(r, "id"), req.Name)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, chat)
}

func (s *server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	s.handleAdjustMember(w, r, true)
}

func (s *server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	s.handleAdjustMember(w, r, false)
}

func (s *server) handleAdjustMember(w http.ResponseWriter, r *http.Request, add bool) {
	memberID := r.URL.Query().Get("memberId")
	if memberID == "" {
		http.Error(w, "memberId required", http.StatusBadRequest)
		return
	}
	chat, ok := s.state.adjustMember(chi.URLParam(r, "id"), memberID, add)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, chat)
}

// handleUpload accepts the multipart form but keeps only a reference:
// the stored message's content is a fake download URI, which is all
// the client engine needs.
func (s *server) handleUpload(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}
		senderID := r.FormValue("sender_id")
		_, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}

		chatID := chi.URLParam(r, "id")
		msg := s.state.appendMessage(chatID, senderID, "/files/"+chatID+"/"+header.Filename, kind)
		s.hub.emit(chatRoom(chatID), event.NewMessage, msg)
		writeJSON(w, msg)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
