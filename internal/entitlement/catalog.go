package entitlement

import (
	"strings"

	"oficinagil/internal/models"
)

// PlanConfig represents a subscription plan offering
type PlanConfig struct {
	ID          models.PlanType `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Currency    string          `json:"currency"`
	Interval    string          `json:"interval"` // monthly, yearly
	Features    []string        `json:"features"`
}

// Feature names used across the catalog and the permission gate. The
// wildcard grants every feature.
const (
	FeatureWildcard = "*"

	FeatureClientes            = "clientes"
	FeatureOrcamentos          = "orcamentos"
	FeatureOrdensServico       = "ordens_servico"
	FeatureAgendamentos        = "agendamentos"
	FeatureEstoque             = "estoque"
	FeatureRelatoriosAvancados = "relatorios_avancados"
	FeatureDiagnosticoIA       = "diagnostico_ia"
	FeatureExportacaoContabil  = "exportacao_contabil"
)

var essencialFeatures = []string{
	FeatureClientes,
	FeatureOrcamentos,
	FeatureOrdensServico,
	FeatureAgendamentos,
	FeatureEstoque,
}

// Predefined plans
var availablePlans = map[models.PlanType]PlanConfig{
	models.PlanEssencialMensal: {
		ID:          models.PlanEssencialMensal,
		Name:        "Essencial",
		Description: "Gestão completa para oficinas de pequeno porte",
		Price:       89.90,
		Currency:    "BRL",
		Interval:    "monthly",
		Features:    essencialFeatures,
	},
	models.PlanEssencialAnual: {
		ID:          models.PlanEssencialAnual,
		Name:        "Essencial",
		Description: "Plano Essencial com cobrança anual",
		Price:       899.00,
		Currency:    "BRL",
		Interval:    "yearly",
		Features:    essencialFeatures,
	},
	models.PlanPremiumMensal: {
		ID:          models.PlanPremiumMensal,
		Name:        "Premium",
		Description: "Todos os recursos, incluindo relatórios e diagnóstico",
		Price:       149.90,
		Currency:    "BRL",
		Interval:    "monthly",
		Features:    []string{FeatureWildcard},
	},
	models.PlanPremiumAnual: {
		ID:          models.PlanPremiumAnual,
		Name:        "Premium",
		Description: "Plano Premium com cobrança anual",
		Price:       1499.00,
		Currency:    "BRL",
		Interval:    "yearly",
		Features:    []string{FeatureWildcard},
	},
	models.PlanFreeTrialEssencial: {
		ID:          models.PlanFreeTrialEssencial,
		Name:        "Essencial",
		Description: "Período de avaliação do plano Essencial",
		Price:       0,
		Currency:    "BRL",
		Interval:    "monthly",
		Features:    essencialFeatures,
	},
	models.PlanFreeTrialPremium: {
		ID:          models.PlanFreeTrialPremium,
		Name:        "Premium",
		Description: "Período de avaliação do plano Premium",
		Price:       0,
		Currency:    "BRL",
		Interval:    "monthly",
		Features:    []string{FeatureWildcard},
	},
}

// premiumOnlyFeatures require an active Premium plan (or a live premium
// trial) on top of the feature-set check.
var premiumOnlyFeatures = map[string]bool{
	FeatureRelatoriosAvancados: true,
	FeatureDiagnosticoIA:       true,
	FeatureExportacaoContabil:  true,
}

// AvailablePlans returns a copy of the plan catalog.
func AvailablePlans() map[models.PlanType]PlanConfig {
	result := make(map[models.PlanType]PlanConfig, len(availablePlans))
	for k, v := range availablePlans {
		result[k] = v
	}
	return result
}

// PlanDisplayName derives the customer-facing plan name from a plan type.
func PlanDisplayName(planType models.PlanType) string {
	switch {
	case strings.Contains(string(planType), "premium"):
		return "Premium"
	case strings.Contains(string(planType), "essencial"):
		return "Essencial"
	default:
		return "Free"
	}
}

// featuresForPlanName returns the feature set for a resolved plan name.
func featuresForPlanName(planName string) []string {
	switch planName {
	case "Premium":
		return []string{FeatureWildcard}
	case "Essencial":
		return essencialFeatures
	default:
		return []string{FeatureClientes, FeatureOrcamentos}
	}
}
