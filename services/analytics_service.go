package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalOrders    int64          `json:"total_orders"`
	TotalRevenue   float64        `json:"total_revenue"`
	PendingOrders  int64          `json:"pending_orders"`
	ActiveSessions int64          `json:"active_sessions"`
	RecentOrders   []models.Order `json:"recent_orders"`
}

type ItemSales struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type AnalyticsReport struct {
	TotalRevenue      float64                    `json:"total_revenue"`
	TotalOrders       int                        `json:"total_orders"`
	AverageOrderValue float64                    `json:"average_order_value"`
	TopItems          []ItemSales                `json:"top_items"`
	RevenueByCategory map[string]float64         `json:"revenue_by_category"`
	StatusCounts      map[models.OrderStatus]int `json:"status_counts"`
}

const (
	recentOrdersLimit = 5
	topItemsLimit     = 5
)

// AnalyticsService hanya membaca. Kegagalan store menghasilkan laporan kosong.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// revenueOrders: order yang dihitung sebagai pendapatan.
func (s *AnalyticsService) revenueOrders(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Order{}).Where("status <> ?", models.OrderCancelled)
}

func (s *AnalyticsService) Dashboard(ctx context.Context) DashboardStats {
	stats := DashboardStats{RecentOrders: []models.Order{}}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		utils.ErrorLogger.Printf("Error counting orders: %v", err)
		return DashboardStats{RecentOrders: []models.Order{}}
	}

	var revenue float64
	if err := s.revenueOrders(db).Select("COALESCE(SUM(total), 0)").Row().Scan(&revenue); err != nil {
		utils.ErrorLogger.Printf("Error summing revenue: %v", err)
	}
	stats.TotalRevenue = decimal.NewFromFloat(revenue).Round(2).InexactFloat64()

	if err := db.Model(&models.Order{}).Where("status = ?", models.OrderPending).Count(&stats.PendingOrders).Error; err != nil {
		utils.ErrorLogger.Printf("Error counting pending orders: %v", err)
	}
	if err := db.Model(&models.TableSession{}).Where("status = ?", models.SessionActive).Count(&stats.ActiveSessions).Error; err != nil {
		utils.ErrorLogger.Printf("Error counting active sessions: %v", err)
	}
	if err := db.Order("created_at desc").Limit(recentOrdersLimit).Find(&stats.RecentOrders).Error; err != nil {
		utils.ErrorLogger.Printf("Error loading recent orders: %v", err)
		stats.RecentOrders = []models.Order{}
	}
	return stats
}

// Analytics menghitung agregat dari seluruh order. Item disimpan sebagai JSON,
// jadi agregasi per item dilakukan di sini, bukan di SQL.
func (s *AnalyticsService) Analytics(ctx context.Context) AnalyticsReport {
	report := AnalyticsReport{
		TopItems:          []ItemSales{},
		RevenueByCategory: map[string]float64{},
		StatusCounts:      map[models.OrderStatus]int{},
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).Find(&orders).Error; err != nil {
		utils.ErrorLogger.Printf("Error loading orders for analytics: %v", err)
		return report
	}

	revenue := decimal.Zero
	byItem := map[string]*ItemSales{}
	itemRevenue := map[string]decimal.Decimal{}
	byCategory := map[string]decimal.Decimal{}

	for _, o := range orders {
		report.StatusCounts[o.Status]++
		if o.Status == models.OrderCancelled {
			continue
		}
		report.TotalOrders++
		revenue = revenue.Add(decimal.NewFromFloat(o.Total))

		for _, l := range o.Items {
			lineTotal := decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
			sales, ok := byItem[l.ItemID]
			if !ok {
				sales = &ItemSales{ItemID: l.ItemID, Name: l.Name}
				byItem[l.ItemID] = sales
			}
			sales.Quantity += l.Quantity
			itemRevenue[l.ItemID] = itemRevenue[l.ItemID].Add(lineTotal)

			category := l.Category
			if category == "" {
				category = "other"
			}
			byCategory[category] = byCategory[category].Add(lineTotal)
		}
	}

	report.TotalRevenue = revenue.Round(2).InexactFloat64()
	if report.TotalOrders > 0 {
		report.AverageOrderValue = revenue.Div(decimal.NewFromInt(int64(report.TotalOrders))).Round(2).InexactFloat64()
	}

	for id, sales := range byItem {
		sales.Revenue = itemRevenue[id].Round(2).InexactFloat64()
		report.TopItems = append(report.TopItems, *sales)
	}
	sort.Slice(report.TopItems, func(i, j int) bool {
		if report.TopItems[i].Revenue == report.TopItems[j].Revenue {
			return report.TopItems[i].ItemID < report.TopItems[j].ItemID
		}
		return report.TopItems[i].Revenue > report.TopItems[j].Revenue
	})
	if len(report.TopItems) > topItemsLimit {
		report.TopItems = report.TopItems[:topItemsLimit]
	}

	for category, total := range byCategory {
		report.RevenueByCategory[category] = total.Round(2).InexactFloat64()
	}
	return report
}
