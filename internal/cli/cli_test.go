package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bananaledger/internal/config"
	"bananaledger/internal/domain"
	"bananaledger/internal/export"
	"bananaledger/internal/ledger"
	"bananaledger/internal/service"
	"bananaledger/mocks"
)

const goodLedger = ledger.Header + "\n2024-03-01;INV1;Incasso Uber - Marzo;100020;105010;123.45;CHF;"

type fixture struct {
	fs          afero.Fs
	conv        *mocks.MockConversionService
	corr        *mocks.MockCorrectionService
	closed      bool
	storeOpened bool
	gotCorr     service.CorrectionService
}

func newFixture() *fixture {
	return &fixture{
		fs:   afero.NewMemMapFs(),
		conv: new(mocks.MockConversionService),
		corr: new(mocks.MockCorrectionService),
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Fs: f.fs,
		LoadConfig: func() (*config.Config, error) {
			return &config.Config{Conversion: config.ConversionConfig{MaxExamples: 3}}, nil
		},
		NewCorrections: func(*config.Config, zerolog.Logger) (service.CorrectionService, func(), error) {
			f.storeOpened = true
			return f.corr, func() { f.closed = true }, nil
		},
		NewConversion: func(_ *config.Config, corrections service.CorrectionService, _ zerolog.Logger) (service.ConversionService, error) {
			f.gotCorr = corrections
			return f.conv, nil
		},
	}
}

func (f *fixture) run(args ...string) (stdout string, err error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(f.deps())
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), err
}

func TestValidate_OK(t *testing.T) {
	f := newFixture()
	require.NoError(t, afero.WriteFile(f.fs, "ledger.csv", []byte(goodLedger), 0o644))

	out, err := f.run("validate", "ledger.csv")

	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)
}

func TestValidate_ErrorDocument(t *testing.T) {
	f := newFixture()
	require.NoError(t, afero.WriteFile(f.fs, "err.csv", []byte("# ERRORE: manca il periodo"), 0o644))

	out, err := f.run("validate", "err.csv")

	require.NoError(t, err)
	assert.Equal(t, "OK (error document)\n", out)
}

func TestValidate_ReportsLine(t *testing.T) {
	f := newFixture()
	bad := ledger.Header + "\n2024-03-01;;Uber;105010;300030;-50.00;CHF;"
	require.NoError(t, afero.WriteFile(f.fs, "bad.csv", []byte(bad), 0o644))

	_, err := f.run("validate", "bad.csv")

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 2, verr.Line)
}

func TestValidate_Stdin(t *testing.T) {
	f := newFixture()
	cmd := NewRootCmd(f.deps())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(bytes.NewBufferString(goodLedger))
	cmd.SetArgs([]string{"validate", "-"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "OK\n", out.String())
}

func TestValidate_MissingFile(t *testing.T) {
	f := newFixture()

	_, err := f.run("validate", "nope.csv")

	assert.ErrorContains(t, err, "reading nope.csv")
}

func TestConvert_TextToStdout(t *testing.T) {
	f := newFixture()
	require.NoError(t, afero.WriteFile(f.fs, "/in/uber_march.pdf", []byte("%PDF-1.4 body"), 0o644))

	f.conv.On("Convert", mock.Anything, mock.MatchedBy(func(in *service.ConvertInput) bool {
		return in.FileName == "uber_march.pdf" &&
			in.ContentType == domain.ContentTypePDF &&
			in.Source == "uber"
	})).Return(&domain.Conversion{Text: goodLedger, Source: domain.SourceUber, Attempts: 1}, nil)

	out, err := f.run("convert", "/in/uber_march.pdf", "--source", "uber")

	require.NoError(t, err)
	assert.Equal(t, goodLedger+"\n", out)
	assert.True(t, f.storeOpened)
	assert.True(t, f.closed)
	assert.Same(t, f.corr, f.gotCorr)
	f.conv.AssertExpectations(t)
}

func TestConvert_NoExamplesSkipsStore(t *testing.T) {
	f := newFixture()
	require.NoError(t, afero.WriteFile(f.fs, "s.pdf", []byte("%PDF-1.4 body"), 0o644))
	f.conv.On("Convert", mock.Anything, mock.Anything).
		Return(&domain.Conversion{Text: goodLedger, Source: domain.SourceUber, Attempts: 1}, nil)

	_, err := f.run("convert", "s.pdf", "--no-examples")

	require.NoError(t, err)
	assert.False(t, f.storeOpened)
	assert.Nil(t, f.gotCorr)
}

func TestConvert_CSVToFile(t *testing.T) {
	f := newFixture()
	require.NoError(t, afero.WriteFile(f.fs, "s.pdf", []byte("%PDF-1.4 body"), 0o644))
	f.conv.On("Convert", mock.Anything, mock.Anything).
		Return(&domain.Conversion{Text: goodLedger, Source: domain.SourceUber, Attempts: 1}, nil)

	out, err := f.run("convert", "s.pdf", "--no-examples", "--format", "csv", "--out", "/out/ledger.csv")

	require.NoError(t, err)
	assert.Empty(t, out)
	written, err := afero.ReadFile(f.fs, "/out/ledger.csv")
	require.NoError(t, err)
	assert.Equal(t, export.BOM, written[:3])
	assert.Contains(t, string(written), "Incasso Uber - Marzo")
}

func TestConvert_CSVKeepsImpossibleDate(t *testing.T) {
	f := newFixture()
	require.NoError(t, afero.WriteFile(f.fs, "s.pdf", []byte("%PDF-1.4 body"), 0o644))
	text := ledger.Header + "\n2024-02-30;INV1;Incasso Uber;100020;105010;1234.56;CHF;"
	f.conv.On("Convert", mock.Anything, mock.Anything).
		Return(&domain.Conversion{Text: text, Source: domain.SourceUber, Attempts: 1}, nil)

	_, err := f.run("convert", "s.pdf", "--no-examples", "--format", "csv", "--out", "/out/ledger.csv")

	require.NoError(t, err)
	written, err := afero.ReadFile(f.fs, "/out/ledger.csv")
	require.NoError(t, err)
	assert.Equal(t, string(export.BOM)+ledger.Header+"\r\n2024-02-30;INV1;Incasso Uber;100020;105010;1234.56;CHF;\r\n", string(written))
}

func TestConvert_XLSXNeedsOut(t *testing.T) {
	f := newFixture()

	_, err := f.run("convert", "s.pdf", "--format", "xlsx")

	assert.ErrorContains(t, err, "--out is required")
	f.conv.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything)
}

func TestConvert_ErrorDocumentCannotBeExported(t *testing.T) {
	f := newFixture()
	require.NoError(t, afero.WriteFile(f.fs, "s.pdf", []byte("%PDF-1.4 body"), 0o644))
	f.conv.On("Convert", mock.Anything, mock.Anything).Return(&domain.Conversion{
		Text: "# ERRORE: manca il totale", Source: domain.SourceSmood, Attempts: 1, IsErrorDocument: true,
	}, nil)

	_, err := f.run("convert", "s.pdf", "--no-examples", "--format", "csv")

	assert.ErrorIs(t, err, domain.ErrErrorDocument)
}

func TestConvert_ServiceError(t *testing.T) {
	f := newFixture()
	require.NoError(t, afero.WriteFile(f.fs, "s.pdf", []byte("%PDF-1.4 body"), 0o644))
	f.conv.On("Convert", mock.Anything, mock.Anything).
		Return(nil, &domain.UnprocessableError{Reason: "line 2: bad"})

	_, err := f.run("convert", "s.pdf", "--no-examples")

	assert.ErrorIs(t, err, domain.ErrUnprocessableOutput)
}

func TestExamples_DefaultLimitFromConfig(t *testing.T) {
	f := newFixture()
	f.corr.On("RecentExamples", mock.Anything, domain.SourceSmood, 3).Return([]domain.CorrectionExample{
		{ModelOutput: "wrong", CorrectOutput: "right"},
	}, nil)

	out, err := f.run("examples", "Smood")

	require.NoError(t, err)
	assert.Contains(t, out, "CORREZIONI PRECEDENTI (smood)")
	assert.Contains(t, out, "OUTPUT ERRATO:\nwrong\nOUTPUT CORRETTO:\nright")
	assert.True(t, f.closed)
	f.corr.AssertExpectations(t)
}

func TestExamples_ExplicitLimitAndEmpty(t *testing.T) {
	f := newFixture()
	f.corr.On("RecentExamples", mock.Anything, domain.SourceUber, 1).Return([]domain.CorrectionExample{}, nil)

	out, err := f.run("examples", "uber", "--limit", "1")

	require.NoError(t, err)
	assert.Equal(t, "no corrections stored for uber\n", out)
}

func TestExamples_StoreError(t *testing.T) {
	f := newFixture()
	f.corr.On("RecentExamples", mock.Anything, domain.SourceUber, 3).Return(nil, errors.New("db down"))

	_, err := f.run("examples", "uber")

	assert.ErrorContains(t, err, "db down")
}
