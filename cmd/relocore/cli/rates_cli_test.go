package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relocore/relocore/internal/rates"
)

type stubBandLoader struct {
	pairs []rates.Pair
	bands map[rates.Pair][]rates.RateBand
}

func (s stubBandLoader) ActivePairs(_ context.Context) ([]rates.Pair, error) {
	return s.pairs, nil
}

func (s stubBandLoader) ActiveBands(_ context.Context, city string, moveTypeID int64) ([]rates.RateBand, error) {
	return s.bands[rates.Pair{DestinationCity: city, MoveTypeID: moveTypeID}], nil
}

func TestRatesValidateCleanTable(t *testing.T) {
	pair := rates.Pair{DestinationCity: "Auckland", MoveTypeID: 2}
	loader := stubBandLoader{
		pairs: []rates.Pair{pair},
		bands: map[rates.Pair][]rates.RateBand{pair: {
			{ID: 1, DestinationCity: "Auckland", MoveTypeID: 2, MinVolume: 0, MaxVolume: 10, IsActive: true},
			{ID: 2, DestinationCity: "Auckland", MoveTypeID: 2, MinVolume: 10.01, MaxVolume: 20, IsActive: true},
		}},
	}

	var stdout bytes.Buffer
	err := RunRatesValidate(context.Background(), loader, RatesValidateOptions{Stdout: &stdout})
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "no coverage issues")
}

func TestRatesValidateReportsGapAsJSON(t *testing.T) {
	pair := rates.Pair{DestinationCity: "Auckland", MoveTypeID: 2}
	loader := stubBandLoader{
		pairs: []rates.Pair{pair},
		bands: map[rates.Pair][]rates.RateBand{pair: {
			{ID: 1, DestinationCity: "Auckland", MoveTypeID: 2, MinVolume: 0, MaxVolume: 10, IsActive: true},
			{ID: 2, DestinationCity: "Auckland", MoveTypeID: 2, MinVolume: 20, MaxVolume: 30, IsActive: true},
		}},
	}

	var stdout bytes.Buffer
	err := RunRatesValidate(context.Background(), loader, RatesValidateOptions{JSONOutput: true, Stdout: &stdout})
	require.Error(t, err)

	var summary RatesValidateSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.False(t, summary.OK)
	require.Len(t, summary.Issues, 1)
	require.Equal(t, rates.IssueGap, summary.Issues[0].Kind)
}

func TestRatesValidateScopedByDestination(t *testing.T) {
	auckland := rates.Pair{DestinationCity: "Auckland", MoveTypeID: 2}
	dubai := rates.Pair{DestinationCity: "Dubai", MoveTypeID: 1}
	loader := stubBandLoader{
		pairs: []rates.Pair{auckland, dubai},
		bands: map[rates.Pair][]rates.RateBand{
			dubai: {
				{ID: 3, DestinationCity: "Dubai", MoveTypeID: 1, MinVolume: 0, MaxVolume: 10, IsActive: true},
				{ID: 4, DestinationCity: "Dubai", MoveTypeID: 1, MinVolume: 5, MaxVolume: 15, IsActive: true},
			},
		},
	}

	var stdout bytes.Buffer
	err := RunRatesValidate(context.Background(), loader, RatesValidateOptions{DestinationCity: "Auckland", Stdout: &stdout})
	require.NoError(t, err, "Dubai's overlap is out of scope")
}
