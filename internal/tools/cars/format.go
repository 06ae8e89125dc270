// Package cars implements the car-advisor tool set offered to the model:
// catalog search, model comparison, user preferences, and result saving.
// Every tool renders its outcome as Russian text for the model to read.
package cars

import (
	"fmt"
	"strings"

	"github.com/carwise/llm-orchestrator/internal/clients"
)

const (
	msgNoCarsFound       = "По заданным критериям автомобилей не найдено. Попробуйте расширить критерии поиска."
	msgNoModelsToCompare = "Не удалось найти указанные модели для сравнения."
	msgNoPreferences     = "У пользователя нет сохранённых предпочтений."
	msgResultSaved       = `Результат подбора успешно сохранён! Ты можешь найти его в разделе "Избранное" в личном кабинете.`

	msgSearchError      = "Произошла ошибка при поиске автомобилей. Попробуйте позже."
	msgCompareError     = "Произошла ошибка при сравнении моделей."
	msgPreferencesError = "Не удалось получить предпочтения пользователя."
	msgSaveError        = "Не удалось сохранить результат подбора."
)

// formatPrice renders a ruble amount with the Russian thousands separator
// (non-breaking space), e.g. 1500000 -> "1 500 000 ₽".
func formatPrice(price float64) string {
	return groupDigits(int64(price)) + " ₽"
}

func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(digit)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}

func ownershipCostPerYear(car clients.CarModel) float64 {
	return car.InsuranceCostPerYearRub + car.AnnualTaxCostRub + car.MaintenanceCostPerYearRub
}

// formatSearchResults renders a search result as a numbered list for the
// model to summarize.
func formatSearchResults(result *clients.SearchResult) string {
	if result == nil || len(result.Models) == 0 {
		return msgNoCarsFound
	}

	entries := make([]string, len(result.Models))
	for i, car := range result.Models {
		entries[i] = fmt.Sprintf("%d. %s %s (%d)\n"+
			"   - ID: %s\n"+
			"   - Цена: %s\n"+
			"   - Кузов: %s\n"+
			"   - Топливо: %s\n"+
			"   - Расход: %s л/100км\n"+
			"   - Стоимость владения в год: %s",
			i+1, car.Brand, car.Model, car.Year,
			car.ID,
			formatPrice(car.Price),
			car.BodyType,
			car.FuelType,
			formatFloat(car.FuelConsumption),
			formatPrice(ownershipCostPerYear(car)))
	}

	return fmt.Sprintf("Найдено %d автомобилей:\n\n%s", result.Total, strings.Join(entries, "\n\n"))
}

// formatComparison renders a side-by-side block per model.
func formatComparison(models []clients.CarModel) string {
	if len(models) == 0 {
		return msgNoModelsToCompare
	}

	divider := strings.Repeat("=", 80)
	separator := strings.Repeat("-", 80)

	blocks := make([]string, len(models))
	for i, car := range models {
		blocks[i] = fmt.Sprintf(`
🚗 %s %s (%d)

💰 Цена: %s
📦 Кузов: %s | Привод: %s | КПП: %s
⚡ Двигатель: %sл, %s л.с.
⛽ Топливо: %s | Расход: %s л/100км

💸 Стоимость владения в год:
   - Страховка: %s
   - Налог: %s
   - Обслуживание: %s
   - ИТОГО: %s/год

%s
`,
			car.Brand, car.Model, car.Year,
			formatPrice(car.Price),
			car.BodyType, orNA(car.DriveType), orNA(car.Transmission),
			orNAFloat(car.EngineVolumeL), orNAInt(car.Horsepower),
			car.FuelType, orNAFloat(car.FuelConsumption),
			formatPrice(car.InsuranceCostPerYearRub),
			formatPrice(car.AnnualTaxCostRub),
			formatPrice(car.MaintenanceCostPerYearRub),
			formatPrice(ownershipCostPerYear(car)),
			separator)
	}

	return fmt.Sprintf("\n📊 Сравнение моделей:\n\n%s\n%s\n%s\n", divider, strings.Join(blocks, "\n"), divider)
}

// formatPreferences renders a profile's saved preferences, or a fixed phrase
// when the profile is absent or empty.
func formatPreferences(profile *clients.UserProfile) string {
	if profile == nil {
		return msgNoPreferences
	}

	var prefs []string

	if profile.PreferredBudgetMinRub > 0 || profile.PreferredBudgetMaxRub > 0 {
		min := "..."
		if profile.PreferredBudgetMinRub > 0 {
			min = groupDigits(int64(profile.PreferredBudgetMinRub))
		}
		max := "..."
		if profile.PreferredBudgetMaxRub > 0 {
			max = groupDigits(int64(profile.PreferredBudgetMaxRub))
		}
		prefs = append(prefs, fmt.Sprintf("Бюджет: %s - %s ₽", min, max))
	}
	if profile.PreferredBodyType != "" {
		prefs = append(prefs, "Предпочитаемый тип кузова: "+profile.PreferredBodyType)
	}
	if profile.PreferredFuelType != "" {
		prefs = append(prefs, "Предпочитаемый тип топлива: "+profile.PreferredFuelType)
	}
	if profile.City != "" {
		prefs = append(prefs, "Город: "+profile.City)
	}

	if len(prefs) == 0 {
		return msgNoPreferences
	}

	return "Сохранённые предпочтения пользователя:\n" + strings.Join(prefs, "\n")
}

func formatFloat(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", f), "0"), ".")
}

func orNA(s string) string {
	if s == "" {
		return "н/д"
	}
	return s
}

func orNAFloat(f float64) string {
	if f == 0 {
		return "н/д"
	}
	return formatFloat(f)
}

func orNAInt(n int) string {
	if n == 0 {
		return "н/д"
	}
	return fmt.Sprintf("%d", n)
}
