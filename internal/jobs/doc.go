// Package jobs loads the inputs of a dispatch: the job file listing
// deployment targets, and the build environment snapshot assembled from the
// process environment, dotenv files and --var overrides.
package jobs
