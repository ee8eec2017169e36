package services

import (
	"fmt"
	"sort"
	"strings"

	"vehicle-scraper/models"
	"vehicle-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(category string, vehicles []*models.Vehicle) *models.CategoryReport {
	report := &models.CategoryReport{
		Category:        category,
		VehiclesByBrand: make(map[string]int),
	}

	if len(vehicles) == 0 {
		return report
	}

	report.TotalVehicles = len(vehicles)

	var priced []*models.Vehicle
	for _, v := range vehicles {
		if v.Price > 0 {
			priced = append(priced, v)
		}
		if v.Brand != "" {
			report.VehiclesByBrand[v.Brand]++
		}
		if v.Condition == "new" {
			report.NewVehicles++
		} else {
			report.UsedVehicles++
		}
		if v.YearLowConfidence {
			report.LowConfidenceYears++
		}
		if v.Description != "" {
			report.WithDescription++
		}
	}

	// Price stats (only vehicles with a price > 0)
	if len(priced) > 0 {
		report.MinPrice = priced[0].Price
		report.MaxPrice = priced[0].Price
		report.MostExpensive = priced[0]
		total := 0
		for _, v := range priced {
			total += v.Price
			if v.Price < report.MinPrice {
				report.MinPrice = v.Price
			}
			if v.Price > report.MaxPrice {
				report.MaxPrice = v.Price
				report.MostExpensive = v
			}
		}
		report.AveragePrice = total / len(priced)
	}

	return report
}

func (s *InsightService) Print(r *models.CategoryReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 SYNC REPORT — %s\033[0m\n", strings.ToUpper(r.Category))
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Vehicles synced        : \033[1m%d\033[0m\n", r.TotalVehicles)
	fmt.Printf("  New / used             : \033[1m%d / %d\033[0m\n", r.NewVehicles, r.UsedVehicles)
	fmt.Printf("  With description       : \033[1m%d\033[0m\n", r.WithDescription)
	if r.LowConfidenceYears > 0 {
		fmt.Printf("  Years flagged for review: \033[1;31m%d\033[0m\n", r.LowConfidenceYears)
	}
	fmt.Println()

	// Price stats
	fmt.Printf("\033[1;33m  Price Statistics (CHF)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average price : \033[1;32mCHF %d\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32mCHF %d\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32mCHF %d\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// Most expensive
	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Vehicle\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Printf("  Year  : %d\n", r.MostExpensive.Year)
		fmt.Printf("  Price : \033[1;31mCHF %d\033[0m\n", r.MostExpensive.Price)
		fmt.Println()
	}

	// Vehicles by brand
	fmt.Printf("\033[1;33m  Vehicles by Brand\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.VehiclesByBrand) == 0 {
		fmt.Printf("  No brand data\n")
	} else {
		type brandCount struct {
			brand string
			count int
		}
		var brands []brandCount
		for brand, cnt := range r.VehiclesByBrand {
			brands = append(brands, brandCount{brand, cnt})
		}
		sort.Slice(brands, func(i, j int) bool {
			return brands[i].count > brands[j].count
		})
		for _, bc := range brands {
			bar := strings.Repeat("█", bc.count)
			fmt.Printf("  %-24s %s (%d)\n", truncate(bc.brand, 22), bar, bc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
