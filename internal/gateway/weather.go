package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sagebrush-ag/fireline/internal/model"
)

// weatherClient fetches forecasts from a live weather service.
type weatherClient struct {
	c *httpClient
}

func (w *weatherClient) Forecast(ctx context.Context, lat, lon float64) (*model.WeatherForecast, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))
	q.Set("days", "7")

	var out model.WeatherForecast
	if err := w.c.getJSON(ctx, "/forecast", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// staticWeather generates a deterministic forecast: warm and dry for
// the first two days, then cooling with light rain.
type staticWeather struct {
	now func() time.Time
}

func (w *staticWeather) Forecast(_ context.Context, lat, lon float64) (*model.WeatherForecast, error) {
	now := w.now()

	fc := &model.WeatherForecast{
		Current: model.WeatherObservation{
			Temperature:   22.5,
			Humidity:      45.0,
			WindSpeed:     8.2,
			Precipitation: 0.0,
		},
	}

	for day := 0; day < 7; day++ {
		temp := 25.0 - float64(day-3)
		if day < 3 {
			temp = 20.0 + float64(day*2)
		}
		precip := 0.0
		desc := "clear sky"
		if day >= 2 {
			precip = 2.5
			desc = "light rain"
		}
		fc.Forecast = append(fc.Forecast, model.ForecastDay{
			Date:          now.AddDate(0, 0, day),
			TempMax:       temp,
			TempMin:       temp - 8,
			Humidity:      40.0 + float64(day*2),
			WindSpeed:     10.0 + float64(day)*0.5,
			Precipitation: precip,
			Description:   desc,
		})
	}

	return fc, nil
}
