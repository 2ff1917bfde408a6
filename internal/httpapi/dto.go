package httpapi

import (
	"time"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/service"
	"github.com/parkpass/ticketing/internal/ticketing"
)

type ticketResponse struct {
	ID            string     `json:"id"`
	TicketNo      string     `json:"ticketNo"`
	ParkID        string     `json:"parkId"`
	ParkName      string     `json:"parkName,omitempty"`
	VisitDate     string     `json:"visitDate"`
	VisitorName   string     `json:"visitorName"`
	VisitorEmail  string     `json:"visitorEmail"`
	VisitorPhone  string     `json:"visitorPhone,omitempty"`
	Adults        int        `json:"adults"`
	Children      int        `json:"children"`
	TotalAmount   int64      `json:"totalAmount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"paymentStatus"`
	PaymentID     string     `json:"paymentId,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	UsedAt        *time.Time `json:"usedAt,omitempty"`
	IsDownloaded  bool       `json:"isDownloaded"`
	IsPrinted     bool       `json:"isPrinted"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toTicketResponse(b model.Booking) ticketResponse {
	resp := ticketResponse{
		ID:            b.ID.String(),
		TicketNo:      b.TicketNo,
		ParkID:        b.ParkID.String(),
		VisitDate:     time.Time(b.VisitDate).Format(ticketing.DateLayout),
		VisitorName:   b.VisitorName,
		VisitorEmail:  b.VisitorEmail,
		VisitorPhone:  b.VisitorPhone,
		Adults:        b.Adults,
		Children:      b.Children,
		TotalAmount:   b.TotalAmount,
		Currency:      ticketing.Currency,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		PaymentID:     b.PaymentID,
		PaymentMethod: b.PaymentMethod,
		UsedAt:        b.UsedAt,
		IsDownloaded:  b.IsDownloaded,
		IsPrinted:     b.IsPrinted,
		CreatedAt:     b.CreatedAt,
	}
	if b.Park != nil {
		resp.ParkName = b.Park.Name
	}
	return resp
}

type eventResponse struct {
	Type      string    `json:"type"`
	ActorID   string    `json:"actorId,omitempty"`
	ActorRole string    `json:"actorRole,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toEventResponses(events []model.TicketEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		r := eventResponse{
			Type:      string(e.EventType),
			ActorRole: e.ActorRole,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
		if e.ActorID != nil {
			r.ActorID = e.ActorID.String()
		}
		out = append(out, r)
	}
	return out
}

type userResponse struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name,omitempty"`
	Role          string   `json:"role"`
	AssignedParks []string `json:"assignedParks"`
	IsActive      bool     `json:"isActive"`
}

func toUserResponse(u *model.User) userResponse {
	parks := []string(u.AssignedParks)
	if parks == nil {
		parks = []string{}
	}
	return userResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		AssignedParks: parks,
		IsActive:      u.IsActive,
	}
}

// Report buckets are keyed by "_id": the hour, weekday (Sunday=1), day of
// month or month the bucket covers.
type salesBucketResponse struct {
	ID       int   `json:"_id"`
	Total    int64 `json:"total"`
	Bookings int   `json:"bookings"`
}

type salesResponse struct {
	Period      string                `json:"period"`
	From        time.Time             `json:"from"`
	To          time.Time             `json:"to"`
	Currency    string                `json:"currency"`
	TotalSales  int64                 `json:"totalSales"`
	SalesByDate []salesBucketResponse `json:"salesByDate"`
}

func toSalesResponse(r *service.SalesReport) salesResponse {
	buckets := make([]salesBucketResponse, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		buckets = append(buckets, salesBucketResponse{ID: b.Key, Total: b.Total, Bookings: b.Bookings})
	}
	return salesResponse{
		Period:      string(r.Period),
		From:        r.From,
		To:          r.To,
		Currency:    ticketing.Currency,
		TotalSales:  r.Total,
		SalesByDate: buckets,
	}
}

type visitorTotals struct {
	Total    int64 `json:"total"`
	Adults   int64 `json:"adults"`
	Children int64 `json:"children"`
}

type visitorBucketResponse struct {
	ID       int   `json:"_id"`
	Adults   int64 `json:"adults"`
	Children int64 `json:"children"`
}

type visitorResponse struct {
	Period         string                  `json:"period"`
	From           time.Time               `json:"from"`
	To             time.Time               `json:"to"`
	TotalVisitors  visitorTotals           `json:"totalVisitors"`
	VisitorsByDate []visitorBucketResponse `json:"visitorsByDate"`
}

func toVisitorResponse(r *service.VisitorReport) visitorResponse {
	buckets := make([]visitorBucketResponse, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		buckets = append(buckets, visitorBucketResponse{ID: b.Key, Adults: b.Adults, Children: b.Children})
	}
	return visitorResponse{
		Period: string(r.Period),
		From:   r.From,
		To:     r.To,
		TotalVisitors: visitorTotals{
			Total:    r.Total(),
			Adults:   r.Adults,
			Children: r.Children,
		},
		VisitorsByDate: buckets,
	}
}

type popularityPark struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type popularityResponse struct {
	Park          popularityPark `json:"park"`
	VisitorsCount int64          `json:"visitorsCount"`
}

func toPopularityResponse(ranking []service.ParkPopularity) []popularityResponse {
	out := make([]popularityResponse, 0, len(ranking))
	for _, r := range ranking {
		out = append(out, popularityResponse{
			Park:          popularityPark{ID: r.ParkID.String(), Name: r.ParkName},
			VisitorsCount: r.Visitors,
		})
	}
	return out
}
