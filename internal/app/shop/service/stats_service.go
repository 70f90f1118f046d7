package service

import (
	"context"
	"fmt"
	"time"

	"cedarcart/internal/app/shop/entity"
	"cedarcart/internal/app/shop/repository"
	"cedarcart/pkg/logger"
	"cedarcart/pkg/metrics"
)

const (
	salesReportDays = 7
	salesReportTTL  = 2 * time.Hour
)

// StatsService отдает агрегированную статистику продаж
// Отчет за последние дни кешируется в Redis и обновляется по расписанию
type StatsService struct {
	orderRepo repository.OrderRepository
	cache     SalesCache
}

// NewStatsService создает новый сервис статистики с внедрением зависимостей
func NewStatsService(orderRepo repository.OrderRepository, cache SalesCache) *StatsService {
	return &StatsService{
		orderRepo: orderRepo,
		cache:     cache,
	}
}

// GetTotalSales возвращает сумму и число оплаченных заказов
func (s *StatsService) GetTotalSales(ctx context.Context) (*entity.SalesTotals, error) {
	totals, err := s.orderRepo.TotalSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get total sales: %w", err)
	}

	return totals, nil
}

// GetSalesByDate возвращает продажи по дням за последнюю неделю
// Дни без продаж присутствуют в отчете с нулевой суммой
func (s *StatsService) GetSalesByDate(ctx context.Context) ([]entity.DailySales, error) {
	report, err := s.cache.GetSalesReport(ctx)
	if err == nil && report != nil {
		metrics.RecordCacheHit("sales_report")
		return report, nil
	}
	metrics.RecordCacheMiss("sales_report")

	report, err = s.buildSalesReport(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSalesReport(ctx, report, salesReportTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to cache sales report")
	}

	return report, nil
}

// RefreshSalesReport пересобирает отчет и обновляет кеш
// Вызывается cron-задачей, чтобы запросы отдавались из кеша
func (s *StatsService) RefreshSalesReport(ctx context.Context) error {
	report, err := s.buildSalesReport(ctx)
	if err != nil {
		return err
	}

	if err := s.cache.SetSalesReport(ctx, report, salesReportTTL); err != nil {
		return fmt.Errorf("failed to cache sales report: %w", err)
	}

	return nil
}

// buildSalesReport собирает отчет, заполняя нулями дни без продаж
func (s *StatsService) buildSalesReport(ctx context.Context) ([]entity.DailySales, error) {
	// Окно и ключи дней считаются по UTC, в том же виде их группирует репозиторий
	since := time.Now().UTC().AddDate(0, 0, -(salesReportDays - 1)).Truncate(24 * time.Hour)

	rows, err := s.orderRepo.SalesByDate(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales by date: %w", err)
	}

	byDate := make(map[string]float64, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row.Sales
	}

	report := make([]entity.DailySales, 0, salesReportDays)
	for i := 0; i < salesReportDays; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		report = append(report, entity.DailySales{
			Date:  date,
			Sales: byDate[date],
		})
	}

	return report, nil
}
