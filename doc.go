// Package nbforge turns Jupyter notebooks into Jekyll blog posts and
// drives the publishing workflow around them: executing and converting
// notebooks, syncing the converted artifacts into the site tree,
// reconciling drift after notebook renames, and committing the result.
//
// # Quick Start
//
// Discover notebooks, convert them, and sync the outputs into the site:
//
//	notebooks, err := nbforge.DiscoverNotebooks(root, "_jupyter/notebooks")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	jobs, err := nbforge.MapOutputs(notebooks, "_jupyter/converted", nbforge.FormatMarkdown)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conv := &nbforge.Converter{
//	    Runner:    nbforge.NewExecRunner(root),
//	    Format:    nbforge.FormatMarkdown,
//	    OutputDir: "_jupyter/converted",
//	}
//	report := conv.ConvertAll(ctx, jobs)
//	if err := report.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
//	syncer := &nbforge.Syncer{
//	    Root:     root,
//	    Output:   "_jupyter/converted",
//	    Posts:    "_posts",
//	    Assets:   "assets/images",
//	    Format:   nbforge.FormatMarkdown,
//	    Manifest: nbforge.RecordLog{Path: filepath.Join(root, nbforge.SyncManifestName)},
//	    Stdout:   os.Stdout,
//	    Log:      slog.Default(),
//	}
//	if _, err := syncer.Sync(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Publishing Pipeline
//
// Publishing runs four stages in order, halting at the first failure:
//
//  1. Convert: execute notebooks and convert them with jupyter nbconvert
//  2. Sync: copy posts and figure directories into the site tree
//  3. Commit: stage and commit every synced file on the manifest
//  4. Push: push the branch to the remote
//
// Completed stages are never rolled back; rerunning after a failure
// redoes only the missing work. Publisher wires the stages together:
//
//	p := &nbforge.Publisher{
//	    Convert: convertStage,
//	    Sync:    syncStage,
//	    Commit:  commitStage,
//	    Push:    pushStage,
//	    Log:     slog.Default(),
//	}
//	report := p.Run(ctx)
//	if report.State == nbforge.StateFailed {
//	    log.Fatalf("stopped after %s: %v", report.Reached, report.Err)
//	}
//
// # Containers
//
// Conversion and linting normally run inside docker images carrying the
// Python and Ruby toolchains. ContainerRunner rewrites any Command into
// a one-shot docker run, so the Converter, Linters, and Jekyll types
// stay docker-unaware:
//
//	docker := &nbforge.Docker{Runner: nbforge.NewExecRunner(root)}
//	runner := &nbforge.ContainerRunner{
//	    Docker: docker,
//	    Base: nbforge.RunSpec{
//	        Image:   image,
//	        Volume:  root + ":" + srcPath,
//	        Workdir: srcPath,
//	    },
//	}
//	conv.Runner = runner
//
// Commands use root-relative paths throughout, so the same argv works on
// the host and inside a container whose workdir is the mounted source.
//
// Long-running containers (Jupyter Lab, the Jekyll dev server) are
// tracked in a record file so they can be stopped later:
//
//	containers := &nbforge.Containers{
//	    Docker: docker,
//	    Record: nbforge.RecordLog{Path: filepath.Join(root, nbforge.ContainerRecordName)},
//	}
//	id, err := containers.Start(ctx, spec)
//	...
//	stopped, err := containers.StopAll(ctx)
//
// # Drift Reconciliation
//
// Renaming or deleting a notebook leaves its old post and figure
// directory behind. Reconciler finds and removes them:
//
//	rec := &nbforge.Reconciler{
//	    Root:      root,
//	    Notebooks: "_jupyter/notebooks",
//	    Output:    "_jupyter/converted",
//	    Posts:     "_posts",
//	    Assets:    "assets/images",
//	    Git:       &nbforge.Git{Runner: nbforge.NewExecRunner(root), Dir: root},
//	    Stdout:    os.Stdout,
//	}
//	err := rec.ReportPosts(ctx) // report only
//	err = rec.CleanPosts(ctx)   // remove
//
// Report operations never modify the tree; clean operations remove
// exactly the reported set and are idempotent.
package nbforge
