// Command xdao-ionhash drives cross-implementation Ion hash testing: it
// installs the implementations under test, expands the seed corpus,
// collects every implementation's digests, and writes a consistency
// report.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"xdao.co/ionhash/config"
	"xdao.co/ionhash/corpus"
	"xdao.co/ionhash/hashalg"
	"xdao.co/ionhash/logging"
	"xdao.co/ionhash/report"
	"xdao.co/ionhash/resource"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("xdao-ionhash", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { printUsage(errOut, fs) }

	var (
		implementations []string
		corpusLocation  string
		localOnly       bool
		list            bool
		gitPath         string
		outputDir       string
		resultsFile     string
		algorithm       string
		configPath      string
		strict          bool
		debug           bool
	)
	fs.StringArrayVarP(&implementations, "implementation", "i", nil,
		"Implementation to test as name,location[,revision] (repeatable)")
	fs.StringVarP(&corpusLocation, "ion-hash-test", "I", "",
		"Seed corpus repository as location[,revision]")
	fs.BoolVarP(&localOnly, "local-only", "L", false,
		"Test only the implementations given with --implementation")
	fs.BoolVarP(&list, "list", "l", false,
		"List the implementations with build recipes and exit")
	fs.StringVar(&gitPath, "git", "", "Path to the git executable")
	fs.StringVarP(&outputDir, "output-dir", "o", "ion-test-driver-output",
		"Root directory for builds, corpus files, and results")
	fs.StringVarP(&resultsFile, "results-file", "r", "",
		"Results path (relative paths land under the output directory)")
	fs.StringVar(&algorithm, "algorithm", "", "Hash algorithm to test")
	fs.StringVar(&configPath, "config", "", "YAML configuration overlay")
	fs.BoolVar(&strict, "strict", false,
		"Exit non-zero when any value classifies as inconsistent")
	fs.BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			fmt.Fprintf(errOut, "config: %v\n", err)
			return 2
		}
	}
	if gitPath != "" {
		cfg.Tools["git"] = gitPath
	}
	if resultsFile != "" {
		cfg.ResultsFile = resultsFile
	}
	if algorithm != "" {
		cfg.Algorithm = algorithm
	}

	if list {
		names := make([]string, 0, len(cfg.Builds))
		for name := range cfg.Builds {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return 0
	}

	if _, err := hashalg.Code(cfg.Algorithm); err != nil {
		fmt.Fprintf(errOut, "%v\n", err)
		return 2
	}

	log, err := logging.New(debug)
	if err != nil {
		fmt.Fprintf(errOut, "logging: %v\n", err)
		return 1
	}
	defer log.Sync()

	descriptors, err := collectDescriptors(implementations, localOnly, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "%v\n", err)
		return 2
	}
	if len(descriptors) == 0 {
		fmt.Fprintln(errOut, "no implementations to test (did you combine --local-only with no --implementation?)")
		return 2
	}

	resources := make([]*resource.Resource, 0, len(descriptors))
	for _, desc := range descriptors {
		build, ok := cfg.Builds[desc.Name]
		if !ok {
			fmt.Fprintf(errOut, "no installer for %s (add a build recipe to the configuration)\n", desc.Name)
			return 2
		}
		resources = append(resources, resource.New(desc, build))
	}

	corpusDesc := resource.Descriptor{Name: config.CorpusResourceName, Location: cfg.CorpusSource, Revision: resource.DefaultRevision}
	if corpusLocation != "" {
		parsed, err := resource.ParseLocation(corpusLocation)
		if err != nil {
			fmt.Fprintf(errOut, "%v\n", err)
			return 2
		}
		corpusDesc.Location = parsed.Location
		corpusDesc.Revision = parsed.Revision
	}
	corpusRes := resource.New(corpusDesc, resource.Build{})

	ctx := context.Background()
	if err := cfg.Tools.Check(ctx); err != nil {
		fmt.Fprintf(errOut, "%v\n", err)
		return 2
	}

	impls := make([]*resource.Implementation, 0, len(resources))
	for _, res := range resources {
		if err := res.Install(ctx, outputDir, cfg.Tools, log); err != nil {
			fmt.Fprintf(errOut, "install: %v\n", err)
			return 1
		}
		im, err := resource.NewImplementation(res)
		if err != nil {
			fmt.Fprintf(errOut, "%v\n", err)
			return 1
		}
		impls = append(impls, im)
	}
	if err := corpusRes.Install(ctx, outputDir, cfg.Tools, log); err != nil {
		fmt.Fprintf(errOut, "install corpus: %v\n", err)
		return 1
	}
	seedDir, err := corpusRes.BuildDir()
	if err != nil {
		fmt.Fprintf(errOut, "%v\n", err)
		return 1
	}

	builder := corpus.Builder{BaseDir: seedDir, OutDir: filepath.Join(outputDir, "corpus")}
	files, err := builder.Build(fs.Args())
	if err != nil {
		fmt.Fprintf(errOut, "build corpus: %v\n", err)
		return 1
	}
	log.Info("corpus ready", zap.Int("files", len(files)))

	if err := resource.RunAll(ctx, impls, cfg.Algorithm, files, log); err != nil {
		fmt.Fprintf(errOut, "digest: %v\n", err)
		return 1
	}

	names := make([]string, len(impls))
	for i, im := range impls {
		names[i] = im.Name()
	}
	rep, err := report.Generate(files, names)
	if err != nil {
		fmt.Fprintf(errOut, "classify: %v\n", err)
		return 1
	}

	resultsPath := cfg.ResultsFile
	if !filepath.IsAbs(resultsPath) {
		resultsPath = filepath.Join(outputDir, resultsPath)
	}
	resultsOut, err := os.Create(resultsPath)
	if err != nil {
		fmt.Fprintf(errOut, "results: %v\n", err)
		return 1
	}
	if err := rep.EncodeText(resultsOut); err != nil {
		resultsOut.Close()
		fmt.Fprintf(errOut, "encode results: %v\n", err)
		return 1
	}
	if err := resultsOut.Close(); err != nil {
		fmt.Fprintf(errOut, "results: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, resultsPath)

	if strict && rep.Summary[report.Inconsistent] > 0 {
		fmt.Fprintf(errOut, "%d value(s) classified inconsistent\n", rep.Summary[report.Inconsistent])
		return 1
	}
	return 0
}

// collectDescriptors merges the command line implementations with the
// configured defaults. A command line implementation whose name matches a
// default replaces it; --local-only drops the defaults entirely.
func collectDescriptors(flags []string, localOnly bool, cfg config.Config) ([]resource.Descriptor, error) {
	var descriptors []resource.Descriptor
	named := make(map[string]bool)
	for _, desc := range flags {
		d, err := resource.ParseNamed(desc)
		if err != nil {
			return nil, err
		}
		if named[d.Name] {
			return nil, fmt.Errorf("implementation %s given twice", d.Name)
		}
		named[d.Name] = true
		descriptors = append(descriptors, d)
	}
	if localOnly {
		return descriptors, nil
	}
	for _, desc := range cfg.Implementations {
		d, err := resource.ParseNamed(desc)
		if err != nil {
			return nil, fmt.Errorf("configured implementation: %w", err)
		}
		if named[d.Name] {
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "xdao-ionhash: cross-implementation Ion hash consistency driver")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-ionhash [flags] [seed-source ...]")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Seed sources (default: all): %s\n", strings.Join([]string{corpus.SourceHashTests, corpus.SourceNaughtyStrings}, ", "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
