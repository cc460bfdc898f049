// Command evaluate classifies a single prediction against a distance without
// calling any upstream service. It prints the same sentence the dashboard shows.
//
// Usage:
//
//	go run ./cmd/evaluate -predicted 5 -distance 11.2
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
)

func main() {
	predicted := flag.Float64("predicted", 0, "model output (burn area in the model's native unit)")
	distance := flag.Float64("distance", 0, "distance to the nearest fire in km")
	verbose := flag.Bool("v", false, "also print the danger and margin-expanded radii")
	flag.Parse()

	verdict, err := domain.Evaluate(*predicted, *distance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluate: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(verdict.Message())
	if *verbose {
		fmt.Printf("danger radius: %s km\nmax radius:    %s km\n",
			domain.FormatRadius(verdict.DangerRadius), domain.FormatRadius(verdict.MaxRadius))
	}
}
