package policy

import (
	"strings"

	"github.com/sagebrush-ag/fireline/internal/model"
)

// stageWaterNeed maps crop growth stage to baseline water demand on a
// 0-1 scale, before weather adjustment.
var stageWaterNeed = map[model.CropStage]float64{
	model.StageSeedling:   0.6,
	model.StageVegetative: 0.8,
	model.StageFlowering:  1.0,
	model.StageMaturity:   0.7,
}

// defaultStageNeed applies when the growth stage is unknown.
const defaultStageNeed = 0.8

// StageWaterNeed returns the baseline water demand for a growth stage.
func StageWaterNeed(stage model.CropStage) float64 {
	if need, ok := stageWaterNeed[stage]; ok {
		return need
	}
	return defaultStageNeed
}

// cropMonthlyWater maps crop type to typical irrigation demand in
// liters per hectare per month.
var cropMonthlyWater = map[string]float64{
	"almond":  12000,
	"grape":   8000,
	"tomato":  10000,
	"lettuce": 6000,
	"corn":    9000,
	"wheat":   5000,
}

// defaultMonthlyWater applies to crop types without a table entry.
const defaultMonthlyWater = 8000

// CropMonthlyWater returns the typical monthly water demand in liters
// per hectare for a crop type.
func CropMonthlyWater(cropType string) float64 {
	if l, ok := cropMonthlyWater[strings.ToLower(strings.TrimSpace(cropType))]; ok {
		return l
	}
	return defaultMonthlyWater
}
