package bench

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

const recordSchema = "uttt_game_v1"

// A single finished arena game, one parquet row per game
type GameRecord struct {
	Worker  int32  `parquet:"worker"`
	Game    int32  `parquet:"game"`
	XPlayer string `parquet:"x_player,dict"`
	OPlayer string `parquet:"o_player,dict"`
	// Comma separated move list, parsable by uttt.FromMoveList
	Moves string `parquet:"moves"`
	Plies int32  `parquet:"plies"`
	// "X won", "O won" or "Draw" after the tie break
	Result string `parquet:"result,dict"`
	// "player1", "player2" or "draw"
	Winner        string `parquet:"winner,dict"`
	XBlocks       int32  `parquet:"x_blocks"`
	OBlocks       int32  `parquet:"o_blocks"`
	FinalPosition string `parquet:"final_position"`
	DurationMs    int64  `parquet:"duration_ms"`
}

func newGameRecord(xName, oName string, final uttt.Position, moves []uttt.Move, tieBreak bool, elapsed time.Duration) GameRecord {
	return GameRecord{
		XPlayer:       xName,
		OPlayer:       oName,
		Moves:         uttt.MoveList(moves),
		Plies:         int32(len(moves)),
		Result:        final.Outcome(tieBreak).String(),
		XBlocks:       int32(final.CapturedCount(uttt.X)),
		OBlocks:       int32(final.CapturedCount(uttt.O)),
		FinalPosition: final.Notation(),
		DurationMs:    elapsed.Milliseconds(),
	}
}

func sortRecords(records []GameRecord) {
	slices.SortFunc(records, func(a, b GameRecord) int {
		if a.Worker != b.Worker {
			return int(a.Worker - b.Worker)
		}
		return int(a.Game - b.Game)
	})
}

// Write the records to 'outPath', through a temporary file renamed on success
func WriteRecords(outPath string, records []GameRecord) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, records,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", recordSchema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

func ReadRecords(path string) ([]GameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	if schema, ok := pf.Lookup("schema"); ok && schema != recordSchema {
		return nil, fmt.Errorf("unexpected schema %q in %s", schema, path)
	}

	reader := parquet.NewGenericReader[GameRecord](pf)
	defer reader.Close()

	records := make([]GameRecord, reader.NumRows())
	n, err := reader.Read(records)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return records[:n], nil
}
