package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type orderProductRequest struct {
	ID       string  `json:"id" binding:"required"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	Products    []orderProductRequest `json:"products" binding:"required"`
	TotalAmount float64               `json:"totalAmount" binding:"required"`
}

// totalTolerance allows for float drift between the client's decimal
// arithmetic and the recomputed wire total.
const totalTolerance = 0.01

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database, feed *OrderFeed) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		order, err := buildOrderFromRequest(req, userID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		if feed != nil {
			feed.Broadcast(order)
		}

		c.JSON(http.StatusCreated, gin.H{"data": order})
	}
}

/* =========================
   PAY ORDER
========================= */

// PayOrder advances an order from pending to paid. Only the owning user may
// advance it, and paying an already-paid order succeeds idempotently.
func PayOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id/pay"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "order id is required")
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.UserID != userID {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		if order.Status == models.OrderStatusPaid {
			c.JSON(http.StatusOK, gin.H{"data": order})
			return
		}

		var updated models.Order
		err = db.Collection("orders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": orderID, "userId": userID},
			bson.M{"$set": bson.M{"status": models.OrderStatusPaid}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": updated})
	}
}

/* =========================
   LIST ORDERS
========================= */

func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": orders})
	}
}

/* =========================
   BUILD ORDER
========================= */

func buildOrderFromRequest(req createOrderRequest, userID primitive.ObjectID) (models.Order, error) {
	if len(req.Products) == 0 {
		return models.Order{}, errors.New("products are required")
	}
	if req.TotalAmount <= 0 || math.IsNaN(req.TotalAmount) {
		return models.Order{}, errors.New("total amount is required")
	}

	products := make([]models.OrderProduct, 0, len(req.Products))
	recomputed := 0.0

	for _, item := range req.Products {
		if strings.TrimSpace(item.ID) == "" {
			return models.Order{}, errors.New("product id is required")
		}
		if item.Quantity < 1 {
			return models.Order{}, errors.New("quantity must be greater than zero")
		}
		if item.Price < 0 || math.IsNaN(item.Price) {
			return models.Order{}, errors.New("price must not be negative")
		}

		products = append(products, models.OrderProduct{
			ID:       item.ID,
			Name:     strings.TrimSpace(item.Name),
			Price:    item.Price,
			Image:    item.Image,
			Quantity: item.Quantity,
		})
		recomputed += item.Price * float64(item.Quantity)
	}

	if math.Abs(recomputed-req.TotalAmount) > totalTolerance {
		return models.Order{}, errors.New("total amount does not match products")
	}

	return models.Order{
		Ref:         generateOrderRef(),
		UserID:      userID,
		Products:    products,
		TotalAmount: req.TotalAmount,
		Status:      models.OrderStatusPending,
		CreatedAt:   time.Now(),
	}, nil
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}
