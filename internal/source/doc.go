// Package source holds one adapter per source kind. Each adapter turns that
// kind's raw payload into the uniform block list the workflow store curates,
// and reports an explicit reason when there is nothing to curate.
package source
