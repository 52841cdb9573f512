// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dferraz/fiscalis/internal/geo"
	"github.com/dferraz/fiscalis/internal/models"
)

// DecodeResult carries the rows a simple (insert-only) decoder produced,
// plus per-row error messages for the rows it skipped.
type DecodeResult[T any] struct {
	TotalRows int
	Docs      []T
	Errors    []string
}

// recordError appends a 1-based line error message.
func (r *DecodeResult[T]) recordError(line int, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("line %d: %v", line, err))
}

// parseInt parses a decimal integer field; empty is an error.
func parseInt(column, v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", column, v)
	}
	return n, nil
}

// parseDecimal parses a float field that may use a decimal comma.
func parseDecimal(column, v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", column, v)
	}
	return f, nil
}

// DecodeBiomes parses the biome catalog extract. Rows with unparsable
// numeric or timestamp fields are skipped and reported.
func DecodeBiomes(r io.Reader) (*DecodeResult[models.Biome], error) {
	table, err := ParseTable(r)
	if err != nil {
		return nil, err
	}
	if err := RequireColumns(table, []string{"SEQ_AUTO_INFRACAO", "BIOMA"}); err != nil {
		return nil, err
	}

	result := &DecodeResult[models.Biome]{TotalRows: table.Len()}
	for i := 0; i < table.Len(); i++ {
		line := i + 1
		seq, err := parseInt("SEQ_AUTO_INFRACAO", table.Cell(i, "SEQ_AUTO_INFRACAO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		num, err := parseInt("NUM_AUTO_INFRACAO", table.Cell(i, "NUM_AUTO_INFRACAO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		updated, err := ParseTimestamp(table.Cell(i, "ULTIMA_ATUALIZACAO_RELATORIO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		result.Docs = append(result.Docs, models.Biome{
			Sequence:  seq,
			Number:    num,
			Series:    table.Cell(i, "CD_SERIE_AUTO_INFRACAO"),
			Biome:     table.Cell(i, "BIOMA"),
			UpdatedAt: updated,
		})
	}
	return result, nil
}

// DecodeSpecimens parses the seized-specimen extract.
func DecodeSpecimens(r io.Reader) (*DecodeResult[models.Specimen], error) {
	table, err := ParseTable(r)
	if err != nil {
		return nil, err
	}
	if err := RequireColumns(table, []string{"SEQ_AUTO_INFRACAO", "SEQ_ESPECIME", "QUANTIDADE"}); err != nil {
		return nil, err
	}

	result := &DecodeResult[models.Specimen]{TotalRows: table.Len()}
	for i := 0; i < table.Len(); i++ {
		line := i + 1
		seq, err := parseInt("SEQ_AUTO_INFRACAO", table.Cell(i, "SEQ_AUTO_INFRACAO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		num, err := parseInt("NUM_AUTO_INFRACAO", table.Cell(i, "NUM_AUTO_INFRACAO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		specimenSeq, err := parseInt("SEQ_ESPECIME", table.Cell(i, "SEQ_ESPECIME"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		quantity, err := parseInt("QUANTIDADE", table.Cell(i, "QUANTIDADE"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		result.Docs = append(result.Docs, models.Specimen{
			Sequence:         seq,
			Number:           num,
			SpecimenSequence: specimenSeq,
			Quantity:         quantity,
			MeasureUnit:      table.Cell(i, "UNIDADE_MEDIDA"),
			Characteristic:   table.Cell(i, "CARACTERISTICA"),
			Type:             table.Cell(i, "TIPO"),
			ScientificName:   table.Cell(i, "NOME_CIENTIFICO"),
			PopularName:      table.Cell(i, "NOME_POPULAR"),
		})
	}
	return result, nil
}

// DecodeFramings parses the legal-framing extract. All of the sequence,
// notice number, norm type, norm number, and update timestamp must be
// present for a row to survive.
func DecodeFramings(r io.Reader) (*DecodeResult[models.Framing], error) {
	table, err := ParseTable(r)
	if err != nil {
		return nil, err
	}
	if err := RequireColumns(table, []string{"SEQ_AUTO_INFRACAO", "SQ_ENQUADRAMENTO", "NU_NORMA"}); err != nil {
		return nil, err
	}

	result := &DecodeResult[models.Framing]{TotalRows: table.Len()}
	for i := 0; i < table.Len(); i++ {
		line := i + 1
		seq, err := parseInt("SEQ_AUTO_INFRACAO", table.Cell(i, "SEQ_AUTO_INFRACAO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		framingSeq, err := parseInt("SQ_ENQUADRAMENTO", table.Cell(i, "SQ_ENQUADRAMENTO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		normNumber, err := parseInt("NU_NORMA", table.Cell(i, "NU_NORMA"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		number := table.Cell(i, "NUM_AUTO_INFRACAO")
		normType := table.Cell(i, "TP_NORMA")
		if number == "" || normType == "" {
			result.recordError(line, fmt.Errorf("missing required field values"))
			continue
		}
		updated, err := ParseTimestamp(table.Cell(i, "ULTIMA_ATUALIZACAO_RELATORIO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		result.Docs = append(result.Docs, models.Framing{
			Sequence:        seq,
			Number:          number,
			FramingSequence: framingSeq,
			Administrative:  table.Cell(i, "ADMINISTRATIVO"),
			NormType:        normType,
			NormNumber:      normNumber,
			UpdatedAt:       updated,
		})
	}
	return result, nil
}

// DecodeInfractions parses the infraction-notice extract. Fine values and
// coordinates use decimal commas in the source file.
func DecodeInfractions(r io.Reader) (*DecodeResult[models.Infraction], error) {
	table, err := ParseTable(r)
	if err != nil {
		return nil, err
	}
	required := []string{"SEQ_AUTO_INFRACAO", "VAL_AUTO_INFRACAO", "DAT_HORA_AUTO_INFRACAO", "NUM_LONGITUDE_AUTO", "NUM_LATITUDE_AUTO"}
	if err := RequireColumns(table, required); err != nil {
		return nil, err
	}

	result := &DecodeResult[models.Infraction]{TotalRows: table.Len()}
	for i := 0; i < table.Len(); i++ {
		line := i + 1
		seq, err := parseInt("SEQ_AUTO_INFRACAO", table.Cell(i, "SEQ_AUTO_INFRACAO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		value, err := parseDecimal("VAL_AUTO_INFRACAO", table.Cell(i, "VAL_AUTO_INFRACAO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		occurredAt, err := ParseTimestamp(table.Cell(i, "DAT_HORA_AUTO_INFRACAO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		longitude, err := parseDecimal("NUM_LONGITUDE_AUTO", table.Cell(i, "NUM_LONGITUDE_AUTO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		latitude, err := parseDecimal("NUM_LATITUDE_AUTO", table.Cell(i, "NUM_LATITUDE_AUTO"))
		if err != nil {
			result.recordError(line, err)
			continue
		}
		result.Docs = append(result.Docs, models.Infraction{
			Sequence:      seq,
			Type:          table.Cell(i, "TIPO_AUTO"),
			Value:         value,
			ConductMotive: table.Cell(i, "MOTIVACAO_CONDUTA"),
			HealthEffect:  table.Cell(i, "EFEITO_SAUDE_PUBLICA"),
			OccurredAt:    occurredAt,
			Municipality:  table.Cell(i, "MUNICIPIO"),
			Longitude:     longitude,
			Latitude:      latitude,
			Biome:         table.Cell(i, "DS_BIOMAS_ATINGIDOS"),
		})
	}
	return result, nil
}

// DecodeBuildings parses the IBAMA building extract. Unlike the other
// extracts it is comma-delimited with lowercase headers, and carries
// coordinates as DMS strings that are converted to a decimal GeoJSON
// point at ingest time.
func DecodeBuildings(r io.Reader) (*DecodeResult[models.Building], error) {
	table, err := ParseTableWith(r, ',')
	if err != nil {
		return nil, err
	}
	if err := RequireColumns(table, []string{"nome", "lat", "long"}); err != nil {
		return nil, err
	}

	result := &DecodeResult[models.Building]{TotalRows: table.Len()}
	for i := 0; i < table.Len(); i++ {
		line := i + 1
		lat := table.Cell(i, "lat")
		long := table.Cell(i, "long")
		latDec, err := geo.ParseDMS(lat)
		if err != nil {
			result.recordError(line, err)
			continue
		}
		longDec, err := geo.ParseDMS(long)
		if err != nil {
			result.recordError(line, err)
			continue
		}
		result.Docs = append(result.Docs, models.Building{
			Name:           table.Cell(i, "nome"),
			ShortName:      table.Cell(i, "nomeabrev"),
			Municipality:   table.Cell(i, "municip"),
			State:          table.Cell(i, "estado"),
			PhysicalStatus: table.Cell(i, "situacaofisica"),
			Lat:            lat,
			Long:           long,
			Location:       models.NewGeoPoint(longDec, latDec),
		})
	}
	return result, nil
}

// Summarize converts a decode outcome plus the store's inserted count into
// the upload response body, capping the error details it carries.
func Summarize[T any](result *DecodeResult[T], inserted, maxErrors int) models.UploadSummary {
	details := result.Errors
	if len(details) > maxErrors {
		details = details[:maxErrors]
	}
	return models.UploadSummary{
		Message:       "upload completed",
		TotalRows:     result.TotalRows,
		TotalInserted: inserted,
		TotalErrors:   len(result.Errors),
		ErrorDetails:  details,
	}
}
