// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package ingest

import (
	"math"
	"strings"
	"testing"
)

func TestDecodeBiomes(t *testing.T) {
	csv := "SEQ_AUTO_INFRACAO;NUM_AUTO_INFRACAO;CD_SERIE_AUTO_INFRACAO;BIOMA;ULTIMA_ATUALIZACAO_RELATORIO\n" +
		"123;456;B;Amazônia;2023-06-01 10:00:00\n" +
		"abc;456;B;Cerrado;2023-06-01 10:00:00\n"
	result, err := DecodeBiomes(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalRows != 2 || len(result.Docs) != 1 || len(result.Errors) != 1 {
		t.Fatalf("unexpected result: total=%d docs=%d errors=%d", result.TotalRows, len(result.Docs), len(result.Errors))
	}
	doc := result.Docs[0]
	if doc.Sequence != 123 || doc.Biome != "Amazônia" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if !strings.Contains(result.Errors[0], "line 2") {
		t.Errorf("expected 1-based line in error, got %q", result.Errors[0])
	}
}

func TestDecodeBiomesMissingColumns(t *testing.T) {
	_, err := DecodeBiomes(strings.NewReader("FOO;BAR\n1;2\n"))
	if err == nil {
		t.Fatal("expected rejection for missing columns")
	}
}

func TestDecodeInfractions(t *testing.T) {
	csv := "SEQ_AUTO_INFRACAO;TIPO_AUTO;VAL_AUTO_INFRACAO;MOTIVACAO_CONDUTA;EFEITO_SAUDE_PUBLICA;DAT_HORA_AUTO_INFRACAO;MUNICIPIO;NUM_LONGITUDE_AUTO;NUM_LATITUDE_AUTO;DS_BIOMAS_ATINGIDOS\n" +
		"10;Multa;1500,50;dolosa;sim;2022-03-01 08:30:00;Manaus;-60,02;-3,12;Amazônia\n" +
		"11;Multa;;dolosa;sim;2022-03-01 08:30:00;Manaus;-60,02;-3,12;Amazônia\n"
	result, err := DecodeInfractions(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Docs) != 1 || len(result.Errors) != 1 {
		t.Fatalf("unexpected result: docs=%d errors=%d", len(result.Docs), len(result.Errors))
	}
	doc := result.Docs[0]
	if doc.Value != 1500.50 {
		t.Errorf("decimal comma not converted: %v", doc.Value)
	}
	if doc.Longitude != -60.02 || doc.Latitude != -3.12 {
		t.Errorf("coordinates not converted: %v / %v", doc.Longitude, doc.Latitude)
	}
}

func TestDecodeFramings(t *testing.T) {
	csv := "SEQ_AUTO_INFRACAO;NUM_AUTO_INFRACAO;SQ_ENQUADRAMENTO;ADMINISTRATIVO;TP_NORMA;NU_NORMA;ULTIMA_ATUALIZACAO_RELATORIO\n" +
		"10;AI-1;1;Sim;Decreto;6514;2023-06-01 10:00:00\n" +
		"10;AI-1;2;Sim;;6514;2023-06-01 10:00:00\n"
	result, err := DecodeFramings(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Docs) != 1 || len(result.Errors) != 1 {
		t.Fatalf("expected blank norm type rejected: docs=%d errors=%d", len(result.Docs), len(result.Errors))
	}
	if result.Docs[0].NormNumber != 6514 {
		t.Errorf("unexpected norm number: %d", result.Docs[0].NormNumber)
	}
}

func TestDecodeBuildings(t *testing.T) {
	csv := "nome,nomeabrev,municip,estado,situacaofisica,lat,long\n" +
		"Sede IBAMA,Sede,Brasília,DF,Ativa,15°47'38\"S,47°52'58\"W\n" +
		"Posto Norte,Posto,Manaus,AM,Ativa,invalid,47°52'58\"W\n"
	result, err := DecodeBuildings(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Docs) != 1 || len(result.Errors) != 1 {
		t.Fatalf("unexpected result: docs=%d errors=%d", len(result.Docs), len(result.Errors))
	}
	doc := result.Docs[0]
	if doc.Location.Type != "Point" {
		t.Errorf("expected GeoJSON point, got %q", doc.Location.Type)
	}
	longitude, latitude := doc.Location.Coordinates[0], doc.Location.Coordinates[1]
	if latitude >= 0 || longitude >= 0 {
		t.Errorf("expected southern/western coordinates negative: %v / %v", latitude, longitude)
	}
	wantLat := -(15.0 + 47.0/60 + 38.0/3600)
	if math.Abs(latitude-wantLat) > 1e-9 {
		t.Errorf("latitude = %v, want %v", latitude, wantLat)
	}
	if doc.Lat == "" || doc.Long == "" {
		t.Error("raw DMS strings must be preserved")
	}
}

func TestSummarize(t *testing.T) {
	result := &DecodeResult[int]{TotalRows: 10, Errors: []string{"a", "b", "c"}}
	summary := Summarize(result, 7, 2)
	if summary.TotalRows != 10 || summary.TotalInserted != 7 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.TotalErrors != 3 || len(summary.ErrorDetails) != 2 {
		t.Errorf("expected capped details with full count, got %+v", summary)
	}
}
