package cmd

import (
	"context"
	"fmt"

	"github.com/cthoyt/robot-obo-tool/config"
	"github.com/cthoyt/robot-obo-tool/internal/owlstat"
)

// RunDoctorCmd prints the environment checks and fails when any check fails.
func RunDoctorCmd(ctx context.Context, cfg *config.Config) error {
	runner := newRunner(cfg)

	failed := 0
	for _, check := range runner.Diagnose(ctx) {
		mark := "ok"
		if !check.OK {
			mark = "FAIL"
			failed++
		}
		if check.Detail != "" {
			fmt.Printf("%-16s %-4s %s\n", check.Name, mark, check.Detail)
		} else {
			fmt.Printf("%-16s %s\n", check.Name, mark)
		}
	}

	if failed > 0 {
		return fmt.Errorf("doctor: %d check(s) failed", failed)
	}

	if v, err := runner.RobotVersion(ctx); err == nil {
		fmt.Printf("%-16s %s\n", "robot-version", v)
	}
	return nil
}

// RunStatsCmd prints entity counts of a local RDF/XML file.
func RunStatsCmd(path string) error {
	stats, err := owlstat.ScanFile(path)
	if err != nil {
		return err
	}

	if stats.OntologyIRI != "" {
		fmt.Printf("ontology:              %s\n", stats.OntologyIRI)
	}
	fmt.Printf("classes:               %d\n", stats.Classes)
	fmt.Printf("object properties:     %d\n", stats.ObjectProperties)
	fmt.Printf("annotation properties: %d\n", stats.AnnotationProperties)
	fmt.Printf("named individuals:     %d\n", stats.NamedIndividuals)
	fmt.Printf("descriptions:          %d\n", stats.Descriptions)
	return nil
}
