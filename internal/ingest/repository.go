package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"candlestore/internal/progress"
	"candlestore/pkg/candle"
	"candlestore/pkg/candlefile"
	"candlestore/pkg/github"
	"candlestore/pkg/storage"
	"candlestore/pkg/timeframe"

	"go.uber.org/zap"
)

// Repository structures.
const (
	StructureSingle = "single" // CSV files at the repository root
	StructureMulti  = "multi"  // one folder per symbol
)

// RepositoryRequest selects what to import from a GitHub repository.
type RepositoryRequest struct {
	URL       string
	Branch    string
	Structure string
	// Symbol overrides the repository name in single mode and picks one
	// folder in multi mode.
	Symbol string
}

// ImportRepository downloads CSV timeframe files from a public GitHub
// repository. In multi mode without a symbol every top-level folder is
// imported; existing symbols are skipped and a failing folder does not stop
// the others.
func (s *Service) ImportRepository(ctx context.Context, req RepositoryRequest) (*Summary, error) {
	const op = "repository"

	owner, repo, err := github.ParseRepoURL(req.URL)
	if err != nil {
		return nil, err
	}
	branch := req.Branch
	if branch == "" {
		branch = s.defaultBranch
	}

	st, err := s.newStaging()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := st.remove(); err != nil {
			s.logger.Warn("failed to remove staging directory", zap.String("dir", st.dir), zap.Error(err))
		}
	}()

	opID := newOperationID()
	s.report(opID, progress.Started, "", "", 0, owner+"/"+repo)
	sum := newSummary(op)

	switch req.Structure {
	case StructureSingle:
		name := req.Symbol
		if name == "" {
			name = repo
		}
		rec, err := s.importRepoSymbol(ctx, opID, st, owner, repo, "", name, branch)
		if err != nil {
			return nil, err
		}
		sum.add(rec)

	case StructureMulti:
		if req.Symbol != "" {
			rec, err := s.importRepoSymbol(ctx, opID, st, owner, repo, req.Symbol, req.Symbol, branch)
			if err != nil {
				return nil, err
			}
			sum.add(rec)
			break
		}
		if err := s.importRepoFolders(ctx, opID, st, owner, repo, branch, sum); err != nil {
			return nil, err
		}

	default:
		return nil, candle.InvalidInput("invalid structure type %q, use 'single' or 'multi'", req.Structure)
	}

	sum.Message = fmt.Sprintf("Successfully downloaded %s with %s",
		plural(len(sum.SymbolsProcessed), "symbol"), plural(sum.TotalTimeframes, "total timeframe"))
	s.report(opID, progress.Finished, "", "", sum.TotalCandles, sum.Message)
	return sum, nil
}

// importRepoFolders imports every top-level folder of the repository.
func (s *Service) importRepoFolders(ctx context.Context, opID string, st *staging, owner, repo, branch string, sum *Summary) error {
	contents, err := s.repos.ListContents(ctx, owner, repo, "", branch)
	if err != nil {
		return err
	}

	var folders []github.Content
	for _, c := range contents {
		if c.IsDir() {
			folders = append(folders, c)
		}
	}
	if len(folders) == 0 {
		return fmt.Errorf("%w: no symbol folders found in repository", candle.ErrNoData)
	}

	failed := 0
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := s.importRepoSymbol(ctx, opID, st, owner, repo, folder.Path, folder.Name, branch)
		switch {
		case errors.Is(err, candle.ErrAlreadyExists):
			symbol := strings.ToUpper(folder.Name)
			s.logger.Info("skipping symbol, already exists", zap.String("symbol", symbol))
			s.report(opID, progress.SymbolSkipped, symbol, "", 0, "already exists")
			sum.SymbolsSkipped = append(sum.SymbolsSkipped, symbol)
		case err != nil:
			failed++
			s.logger.Warn("failed to process symbol", zap.String("folder", folder.Path), zap.Error(err))
			s.report(opID, progress.SymbolFailed, strings.ToUpper(folder.Name), "", 0, err.Error())
		default:
			sum.add(rec)
		}
	}

	if len(sum.SymbolsProcessed) == 0 {
		return fmt.Errorf("%w: no symbols were successfully downloaded (%d skipped, %d failed)",
			candle.ErrNoData, len(sum.SymbolsSkipped), failed)
	}
	return nil
}

// importRepoSymbol imports the CSV files in path as symbol name. The
// existence check runs before any request is made.
func (s *Service) importRepoSymbol(ctx context.Context, opID string, st *staging, owner, repo, path, name, branch string) (*candle.SymbolRecord, error) {
	symbol, err := storage.Key(name)
	if err != nil {
		return nil, err
	}
	unlock, err := s.claim(ctx, symbol)
	if err != nil {
		return nil, err
	}
	defer unlock()

	contents, err := s.repos.ListContents(ctx, owner, repo, path, branch)
	if err != nil {
		return nil, err
	}

	var csvFiles []github.Content
	for _, c := range contents {
		if c.IsCSV() {
			csvFiles = append(csvFiles, c)
		}
	}
	if len(csvFiles) == 0 {
		where := path
		if where == "" {
			where = "repository root"
		}
		return nil, fmt.Errorf("%w: no CSV files found in %s", candle.ErrNoData, where)
	}

	var files []staged
	seen := make(map[string]string)
	for _, f := range csvFiles {
		token := strings.ToUpper(f.Name[:len(f.Name)-len(".csv")])
		if !timeframe.Code(token).IsValid() {
			s.logger.Info("skipping invalid timeframe", zap.String("symbol", symbol), zap.String("file", f.Name))
			s.report(opID, progress.TimeframeSkip, symbol, token, 0, "not a known timeframe")
			continue
		}
		if prev, ok := seen[token]; ok {
			s.logger.Info("skipping duplicate timeframe",
				zap.String("symbol", symbol), zap.String("file", f.Name), zap.String("kept", prev))
			s.report(opID, progress.TimeframeSkip, symbol, token, 0, "duplicate of "+prev)
			continue
		}
		if f.DownloadURL == "" {
			s.logger.Info("skipping file without download url", zap.String("symbol", symbol), zap.String("file", f.Name))
			continue
		}

		content, err := s.repos.Download(ctx, f.DownloadURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("failed to download timeframe",
				zap.String("symbol", symbol), zap.String("timeframe", token), zap.Error(err))
			s.report(opID, progress.TimeframeFailed, symbol, token, 0, err.Error())
			continue
		}

		p, err := st.write(symbol, token, content)
		if err != nil {
			return nil, err
		}
		n := candlefile.CountLines(content)
		s.logger.Info("downloaded timeframe",
			zap.String("symbol", symbol), zap.String("timeframe", token), zap.Int("candles", n))
		s.report(opID, progress.TimeframeDone, symbol, token, n, "")
		files = append(files, staged{token: token, path: p, count: n})
		seen[token] = f.Name
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no valid timeframe files were downloaded for %s", candle.ErrNoValidTimeframes, symbol)
	}

	rec, err := s.commit(ctx, symbol, files)
	if err != nil {
		return nil, err
	}
	s.report(opID, progress.SymbolDone, symbol, "", rec.TotalCandles, "")
	return rec, nil
}
