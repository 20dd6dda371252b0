package integration_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

const (
	testEmail    = "owner@irontemple.com"
	testPassword = "secret123"
	sessionValue = "it-session-token"
)

type backendSub struct {
	ID        string  `json:"_id"`
	Plan      string  `json:"plan"`
	Amount    float64 `json:"amount"`
	ExtraDays int     `json:"extra_days"`
	StartDate string  `json:"start_date,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
	Status    string  `json:"status"`
}

type backendMember struct {
	ID            string       `json:"_id"`
	RollNo        string       `json:"roll_no"`
	Name          string       `json:"name"`
	PhoneNumber   string       `json:"phone_number,omitempty"`
	GymID         string       `json:"gym_id,omitempty"`
	Address       string       `json:"address,omitempty"`
	StartDate     string       `json:"start_date,omitempty"`
	DaysLeft      any          `json:"days_left,omitempty"`
	Subscriptions []backendSub `json:"subscriptions,omitempty"`
}

// fakeGym is an in-memory stand-in for the SoloManager backend. It keeps
// the same routes, envelopes and cookie-based session the real server
// uses, small enough to assert against.
type fakeGym struct {
	mu sync.Mutex

	gymName    string
	members    []backendMember
	nextSubID  int
	lastUpdate map[string]any
}

func newFakeGym() *fakeGym {
	return &fakeGym{gymName: "Iron Temple", nextSubID: 1}
}

func (f *fakeGym) seed(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 1; i <= n; i++ {
		m := backendMember{
			ID:          fmt.Sprintf("m%03d", i),
			RollNo:      strconv.Itoa(100 + i),
			Name:        fmt.Sprintf("Member %02d", i),
			PhoneNumber: fmt.Sprintf("555-01%02d", i),
			GymID:       "g1",
			StartDate:   "2026-01-01",
		}
		if i%3 != 0 {
			m.DaysLeft = 30 + i
			m.Subscriptions = []backendSub{{
				ID: fmt.Sprintf("s%03d", i), Plan: "3 Months", Amount: 1500,
				StartDate: "2026-07-01", EndDate: "2026-10-01", Status: "Active",
			}}
		} else {
			m.DaysLeft = "Pending start"
		}
		f.members = append(f.members, m)
	}
}

func (f *fakeGym) find(id string) *backendMember {
	for i := range f.members {
		if f.members[i].ID == id {
			return &f.members[i]
		}
	}
	return nil
}

func (f *fakeGym) filtered(filter string) []backendMember {
	var out []backendMember
	for _, m := range f.members {
		active := len(m.Subscriptions) > 0
		switch filter {
		case "active":
			if !active {
				continue
			}
		case "inactive":
			if active {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

func requireSession(c *gin.Context) {
	v, err := c.Cookie("sm_session")
	if err != nil || v != sessionValue {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
	}
}

func (f *fakeGym) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/api/auth/login", func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if body.Email != testEmail || body.Password != testPassword {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}
		c.SetCookie("sm_session", sessionValue, 3600, "/", "", false, true)
		f.mu.Lock()
		gym := f.gymName
		f.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"success": true, "user": gin.H{
			"id": "u1", "name": "Owner", "email": body.Email, "role": "admin", "gym_name": gym,
		}})
	})

	authed := r.Group("/", requireSession)

	authed.GET("/api/member/get-members", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		members := f.filtered(c.DefaultQuery("filter", "all"))

		total := len(members)
		totalPages := (total + limit - 1) / limit
		lo := (page - 1) * limit
		hi := lo + limit
		if lo > total {
			lo = total
		}
		if hi > total {
			hi = total
		}

		c.JSON(http.StatusOK, gin.H{
			"members":      members[lo:hi],
			"totalPages":   totalPages,
			"totalMembers": total,
			"currentPage":  page,
		})
	})

	authed.GET("/api/member/search", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()

		q := strings.ToLower(c.Query("q"))
		var hits []backendMember
		for _, m := range f.filtered(c.DefaultQuery("filter", "all")) {
			if strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(m.RollNo, q) {
				hits = append(hits, m)
			}
		}
		c.JSON(http.StatusOK, gin.H{"members": hits, "totalMembers": len(hits)})
	})

	authed.GET("/api/member/expired", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"expiredSubscriptions": []backendMember{}})
	})

	authed.POST("/api/member/expiring-soon", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"expiringSoon": []backendMember{}})
	})

	authed.GET("/api/member/:id", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		m := f.find(c.Param("id"))
		if m == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "member not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"member": m})
	})

	authed.PUT("/api/member/:id", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		m := f.find(c.Param("id"))
		if m == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "member not found"})
			return
		}

		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		f.lastUpdate = payload

		if name, ok := payload["name"].(string); ok {
			m.Name = name
		}
		if addr, ok := payload["address"].(string); ok {
			m.Address = addr
		}
		if start, ok := payload["start_date"].(string); ok {
			m.StartDate = start
		}
		c.JSON(http.StatusOK, gin.H{"member": m})
	})

	authed.GET("/api/member/:id/subscriptions", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		m := f.find(c.Param("id"))
		if m == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "member not found"})
			return
		}
		subs := m.Subscriptions
		if subs == nil {
			subs = []backendSub{}
		}
		c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
	})

	authed.POST("/api/member/:id/subscription", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		m := f.find(c.Param("id"))
		if m == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "member not found"})
			return
		}

		var sub backendSub
		if err := c.ShouldBindJSON(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		sub.ID = fmt.Sprintf("new%03d", f.nextSubID)
		f.nextSubID++
		if sub.Status == "" {
			sub.Status = "Active"
		}
		m.Subscriptions = append(m.Subscriptions, sub)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	authed.PUT("/api/member/subscription/:id", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var sub backendSub
		if err := c.ShouldBindJSON(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		for i := range f.members {
			for j := range f.members[i].Subscriptions {
				if f.members[i].Subscriptions[j].ID == c.Param("id") {
					sub.ID = c.Param("id")
					f.members[i].Subscriptions[j] = sub
					c.JSON(http.StatusOK, gin.H{"success": true})
					return
				}
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "subscription not found"})
	})

	authed.DELETE("/api/member/subscription/:id", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.members {
			m := &f.members[i]
			for j := range m.Subscriptions {
				if m.Subscriptions[j].ID == c.Param("id") {
					m.Subscriptions = append(m.Subscriptions[:j], m.Subscriptions[j+1:]...)
					c.JSON(http.StatusOK, gin.H{"success": true})
					return
				}
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "subscription not found"})
	})

	authed.GET("/api/finance/data", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var total float64
		records := 0
		var rows []gin.H
		for _, m := range f.members {
			for _, s := range m.Subscriptions {
				total += s.Amount
				records++
				rows = append(rows, gin.H{
					"id": s.ID, "memberName": m.Name, "memberRollNo": m.RollNo,
					"plan": s.Plan, "amount": s.Amount, "date": s.StartDate,
				})
			}
		}
		avg := 0.0
		if records > 0 {
			avg = total / float64(records)
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"totalRevenue":       total,
			"summary":            gin.H{"totalRecords": records, "averageRevenue": avg},
			"highestRevenuePlan": gin.H{"plan": "3 Months", "revenue": total},
			"chartData":          []gin.H{{"label": c.Query("period"), "revenue": total}},
			"tableData":          rows,
		}})
	})

	authed.PUT("/api/admin/update-gym-name", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		f.gymName = body["gym_name"]
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Gym name updated"})
	})

	return r
}

func startBackend(t *testing.T, gym *fakeGym) string {
	t.Helper()
	srv := httptest.NewServer(gym.router())
	t.Cleanup(srv.Close)
	return srv.URL
}
