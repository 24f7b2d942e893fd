package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"candlestore/internal/progress"
	"candlestore/pkg/candle"
	"candlestore/pkg/candlefile"
	"candlestore/pkg/timeframe"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// QuoteRequest selects the candles to download from the quote API.
type QuoteRequest struct {
	Ticker     string
	SaveAs     string
	Start      string // YYYY-MM-DD, UTC midnight
	End        string // YYYY-MM-DD, UTC midnight
	Timeframes []string
}

// parseDate reads a YYYY-MM-DD date as UTC midnight.
func parseDate(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, candle.InvalidInput("invalid %s date %q, expected YYYY-MM-DD", field, s)
	}
	return t, nil
}

// ImportQuotes downloads each requested timeframe of a ticker and stores the
// successful ones under SaveAs. Timeframes that fail or return no candles are
// skipped; the import fails only when none succeed.
func (s *Service) ImportQuotes(ctx context.Context, req QuoteRequest) (*Summary, error) {
	const op = "quote"

	if s.charts == nil {
		return nil, candle.InvalidInput("quote source is not configured")
	}
	if strings.TrimSpace(req.SaveAs) == "" {
		return nil, candle.InvalidInput("symbol name cannot be empty")
	}
	if !ValidSymbolName(req.SaveAs) {
		return nil, candle.InvalidInput("symbol name can only contain letters, numbers, and underscores: %q", req.SaveAs)
	}
	ticker := strings.TrimSpace(req.Ticker)
	if ticker == "" {
		return nil, candle.InvalidInput("ticker cannot be empty")
	}
	if len(req.Timeframes) == 0 {
		return nil, candle.InvalidInput("no timeframes requested")
	}
	start, err := parseDate("start", req.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end", req.End)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, candle.InvalidInput("end date %s is before start date %s", req.End, req.Start)
	}

	symbol := strings.ToUpper(req.SaveAs)
	unlock, err := s.claim(ctx, symbol)
	if err != nil {
		return nil, err
	}
	defer unlock()

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
	s.report(opID, progress.Started, symbol, "", 0, ticker)

	codes := make([]timeframe.Code, 0, len(req.Timeframes))
	seen := make(map[timeframe.Code]bool, len(req.Timeframes))
	for _, raw := range req.Timeframes {
		code, _ := timeframe.Canonicalize(raw)
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	timeframe.Sort(codes)

	var files []staged
	for _, code := range codes {
		s.logger.Info("fetching timeframe", zap.String("ticker", ticker), zap.String("timeframe", string(code)))
		candles, err := s.charts.Candles(ctx, ticker, code, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("failed to fetch timeframe",
				zap.String("ticker", ticker), zap.String("timeframe", string(code)), zap.Error(err))
			s.report(opID, progress.TimeframeFailed, symbol, string(code), 0, err.Error())
			continue
		}

		content, err := candlefile.EncodeCandles(candles)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", code, err)
		}
		p, err := st.write(symbol, string(code), content)
		if err != nil {
			return nil, err
		}
		s.report(opID, progress.TimeframeDone, symbol, string(code), len(candles), "")
		files = append(files, staged{token: string(code), path: p, count: len(candles)})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: failed to download any timeframe data for %s", candle.ErrNoValidTimeframes, ticker)
	}

	rec, err := s.commit(ctx, symbol, files)
	if err != nil {
		s.report(opID, progress.SymbolFailed, symbol, "", 0, err.Error())
		return nil, err
	}

	sum := newSummary(op)
	sum.add(rec)
	sum.Message = fmt.Sprintf("Successfully downloaded %s with %d total candles",
		plural(sum.TotalTimeframes, "timeframe"), sum.TotalCandles)

	s.report(opID, progress.SymbolDone, symbol, "", rec.TotalCandles, "")
	s.report(opID, progress.Finished, "", "", sum.TotalCandles, sum.Message)
	return sum, nil
}
