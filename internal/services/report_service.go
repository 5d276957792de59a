package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"kantin/internal/models"
	"kantin/internal/repositories"
)

const (
	topItemsLimit = 5
	revenueDays   = 7
)

// ItemSales aggregates one menu item over paid orders.
type ItemSales struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Revenue    float64 `json:"revenue"`
}

// DailyRevenue is the paid total of orders created on one day.
type DailyRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// Summary is the admin finance and kitchen overview.
type Summary struct {
	TotalRevenue      float64                    `json:"total_revenue"`
	PendingAmount     float64                    `json:"pending_amount"`
	FailedAmount      float64                    `json:"failed_amount"`
	Counts            map[models.OrderStatus]int `json:"counts"`
	AverageOrderValue float64                    `json:"average_order_value"`
	TopItems          []ItemSales                `json:"top_items"`
	DailyRevenue      []DailyRevenue             `json:"daily_revenue"`
	TodayDeliveries   int                        `json:"today_deliveries"`
	KitchenSummary    []ItemSales                `json:"kitchen_summary"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

// ReportService computes admin reports from stored orders.
type ReportService struct {
	orderRepo repositories.OrderRepository
}

// NewReportService creates a new ReportService.
func NewReportService(orderRepo repositories.OrderRepository) *ReportService {
	return &ReportService{orderRepo: orderRepo}
}

// Summary aggregates every order as of now.
func (s *ReportService) Summary(now time.Time) (*Summary, error) {
	orders, err := s.orderRepo.GetAll(repositories.OrderFilter{})
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Counts:      make(map[models.OrderStatus]int, len(models.AllStatuses)),
		GeneratedAt: now,
	}
	for _, status := range models.AllStatuses {
		summary.Counts[status] = 0
	}

	today := startOfDay(now)
	firstDay := today.AddDate(0, 0, -(revenueDays - 1))
	daily := make([]DailyRevenue, revenueDays)
	dayIndex := make(map[string]int, revenueDays)
	for i := range daily {
		daily[i].Date = firstDay.AddDate(0, 0, i).Format(DateLayout)
		dayIndex[daily[i].Date] = i
	}

	sold := map[string]*ItemSales{}
	kitchen := map[string]*ItemSales{}
	paid := 0

	for _, order := range orders {
		summary.Counts[order.Status]++
		switch order.Status {
		case models.StatusPending:
			summary.PendingAmount += order.TotalPrice
		case models.StatusFailed, models.StatusExpired:
			summary.FailedAmount += order.TotalPrice
		case models.StatusPaid:
			paid++
			summary.TotalRevenue += order.TotalPrice
			addItems(sold, order.Items)

			if day, ok := dayIndex[order.CreatedAt.In(now.Location()).Format(DateLayout)]; ok {
				daily[day].Revenue += order.TotalPrice
				daily[day].Orders++
			}
			if startOfDay(order.DeliveryDate.In(now.Location())).Equal(today) {
				summary.TodayDeliveries++
				addItems(kitchen, order.Items)
			}
		}
	}

	if paid > 0 {
		summary.AverageOrderValue = summary.TotalRevenue / float64(paid)
	}
	summary.DailyRevenue = daily
	summary.TopItems = rankItems(sold, topItemsLimit)
	summary.KitchenSummary = rankItems(kitchen, 0)
	return summary, nil
}

func addItems(into map[string]*ItemSales, items []models.OrderItem) {
	for _, item := range items {
		sales, ok := into[item.MenuItemID]
		if !ok {
			sales = &ItemSales{MenuItemID: item.MenuItemID, Name: item.MenuItemName}
			into[item.MenuItemID] = sales
		}
		sales.Quantity += item.Quantity
		sales.Revenue += item.Subtotal()
	}
}

// rankItems orders by quantity, then name. limit 0 keeps everything.
func rankItems(from map[string]*ItemSales, limit int) []ItemSales {
	list := make([]ItemSales, 0, len(from))
	for _, sales := range from {
		list = append(list, *sales)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Quantity != list[j].Quantity {
			return list[i].Quantity > list[j].Quantity
		}
		return list[i].Name < list[j].Name
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

// ExportTransactions writes the orders matching filter as CSV.
func (s *ReportService) ExportTransactions(w io.Writer, filter repositories.OrderFilter) error {
	orders, err := s.orderRepo.GetAll(filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"order_id", "created_at", "user_id", "recipient_name", "recipient_class",
		"delivery_date", "status", "status_label", "total_price", "payment_id",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, order := range orders {
		record := []string{
			order.ID,
			order.CreatedAt.Format(time.RFC3339),
			order.UserID,
			order.RecipientName,
			order.RecipientClass,
			order.DeliveryDate.Format(DateLayout),
			string(order.Status),
			models.DisplayStatus(order.Status).Label,
			strconv.FormatFloat(order.TotalPrice, 'f', 2, 64),
			order.PaymentID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for order %s: %w", order.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
