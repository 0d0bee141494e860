package types

import (
	"mime/multipart"
)

type JSONB map[string]any

type Metadata map[string]any

type Role string

const (
	ROLE_USER  Role = "user"
	ROLE_ADMIN Role = "admin"
)

// Actor is the verified identity attached to a request.
type Actor struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == ROLE_ADMIN
}

type TripStatus string

const (
	TRIP_SCHEDULED TripStatus = "scheduled"
	TRIP_POSTPONED TripStatus = "postponed"
	TRIP_CANCELLED TripStatus = "cancelled"
	TRIP_COMPLETED TripStatus = "completed"
)

type ScheduleMode string

const (
	SCHEDULE_FIXED       ScheduleMode = "fixed"
	SCHEDULE_MONTH       ScheduleMode = "month"
	SCHEDULE_UNSCHEDULED ScheduleMode = "unscheduled"
)

const TRIP_DATE_TBD = "TBD"

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELLED BookingStatus = "cancelled"
	BOOKING_COMPLETED BookingStatus = "completed"
)

type PaymentStatus string

const (
	PAYMENT_PENDING PaymentStatus = "pending"
	PAYMENT_PAID    PaymentStatus = "paid"
	PAYMENT_FAILED  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PAYMENT_PAY_ON_ARRIVAL PaymentMethod = "pay_on_arrival"
	PAYMENT_ONLINE         PaymentMethod = "online"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BOOKING_PENDING, BOOKING_CONFIRMED, BOOKING_CANCELLED, BOOKING_COMPLETED:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PAYMENT_PENDING, PAYMENT_PAID, PAYMENT_FAILED:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	return m == PAYMENT_PAY_ON_ARRIVAL || m == PAYMENT_ONLINE
}

func (s TripStatus) Valid() bool {
	switch s {
	case TRIP_SCHEDULED, TRIP_POSTPONED, TRIP_CANCELLED, TRIP_COMPLETED:
		return true
	}
	return false
}

const (
	COLLECTION_TRIPS    = "trips"
	COLLECTION_BOOKINGS = "bookings"
	COLLECTION_REVIEWS  = "reviews"
	COLLECTION_BLOGS    = "blogs"
	COLLECTION_USERS    = "users"
)

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required"`
}

type TravelerDetails struct {
	Name  string `json:"name" firestore:"name"`
	Email string `json:"email" firestore:"email"`
	Phone string `json:"phone" firestore:"phone"`
}

type CreateBookingRequestBody struct {
	TripID        string          `json:"tripId" binding:"required"`
	Seats         int             `json:"seats" binding:"required,min=1"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" binding:"omitempty,paymentmethod"`
	UserDetails   TravelerDetails `json:"userDetails"`
	// Accepted for compatibility with older clients and ignored.
	TotalAmount float64 `json:"totalAmount,omitempty"`
}

type UpdateBookingStatusRequestBody struct {
	Status        BookingStatus `json:"status" binding:"required,bookingstatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus" binding:"omitempty,paymentstatus"`
}

type BookingStatusUpdate struct {
	ID            string        `json:"id"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
}

type VerifyPassRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type CreateOrderRequestBody struct {
	Amount float64 `json:"amount" binding:"omitempty,gt=0"`
	TripID string  `json:"tripId"`
	Seats  int     `json:"seats" binding:"omitempty,min=1"`
}

type VerifyPaymentRequestBody struct {
	OrderID        string                   `json:"razorpay_order_id" binding:"required"`
	PaymentID      string                   `json:"razorpay_payment_id" binding:"required"`
	Signature      string                   `json:"razorpay_signature"`
	BookingDetails CreateBookingRequestBody `json:"bookingDetails"`
}

type CreateReviewRequestBody struct {
	TripID  string `json:"tripId"`
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

type ListQuery struct {
	Limit int  `form:"limit" binding:"omitempty,min=1,max=50"`
	Live  bool `form:"live"`
}

type ListUsersQuery struct {
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=1000"`
	NextPageToken string `form:"nextPageToken"`
}

// TripForm is the multipart payload of trip create and update requests.
type TripForm struct {
	Title         *string                 `form:"title"`
	Description   *string                 `form:"description"`
	Price         *float64                `form:"price" binding:"omitempty,gte=0"`
	Duration      *string                 `form:"duration"`
	Location      *string                 `form:"location"`
	Status        *TripStatus             `form:"status" binding:"omitempty,tripstatus"`
	FixedDate     *string                 `form:"fixedDate" binding:"omitempty,isodate"`
	ExpectedMonth *string                 `form:"expectedMonth" binding:"omitempty,yearmonth"`
	BookingCutoff *string                 `form:"bookingCutoff" binding:"omitempty,isodate"`
	IncludedItems *string                 `form:"includedItems"`
	PlacesCovered *string                 `form:"placesCovered"`
	Images        []*multipart.FileHeader `form:"images"`
}

type CreateBlogRequestBody struct {
	Title       string `json:"title" binding:"required"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content"`
	Image       string `json:"image" binding:"required"`
	Category    string `json:"category"`
	ReadTime    string `json:"readTime"`
	Author      string `json:"author"`
	YoutubeURL  string `json:"youtubeUrl"`
	FacebookURL string `json:"facebookUrl"`
}

type UpdateProfileRequestBody struct {
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	DOB      string `json:"dob" binding:"omitempty,isodate"`
	AadharNo string `json:"aadharNo"`
	PanNo    string `json:"panNo"`
}

type AdminLoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type Handler func(payload string)
