package serviceImp

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"mkulima/entities"
	"mkulima/pkg/process/service"
	"mkulima/pkg/reading"
)

const exportSheet = "Processes"

var exportHeader = []any{
	"process_id", "process_date", "crop", "process_type", "stage",
	"N", "P", "K", "temperature", "humidity", "ph", "rainfall",
	"suitable", "suitability_score", "flags", "advice",
}

func (s *processSvc) Export(ctx context.Context, farmerID string, w io.Writer) error {
	list, err := s.List(ctx, farmerID)
	if err != nil {
		return err
	}
	x := excelize.NewFile()
	defer x.Close()
	if err := x.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := x.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}
	for i := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(&list[i])
		if err := x.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("export row %d: %w", i+1, err)
		}
	}
	return x.Write(w)
}

func exportRow(p *entities.CropProcess) []any {
	return []any{
		p.ProcessID, p.ProcessDate.Format(service.DateLayout), p.Crop, p.ProcessType, str(p.Stage),
		num(p.N), num(p.P), num(p.K), num(p.Temperature), num(p.Humidity), num(p.PH), num(p.Rainfall),
		boolean(p.Suitable), num(p.SuitabilityScore), flagList(p.Flags), str(p.Advice),
	}
}

func num(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func str(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolean(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}

// flagList renders flags as "N=low; P=ok" in reading order.
func flagList(flags map[string]string) string {
	if flags == nil {
		return ""
	}
	var parts []string
	for _, n := range reading.Names {
		if s, ok := flags[n]; ok {
			parts = append(parts, n+"="+s)
		}
	}
	return strings.Join(parts, "; ")
}
