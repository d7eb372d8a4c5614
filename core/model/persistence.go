package model

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// ArchiveEntry はモデルアーカイブ内の1ファイル
type ArchiveEntry struct {
	Name string
	Data []byte
}

// JSONEntry は値をインデント付きJSONにエンコードしたエントリを作成する
func JSONEntry(name string, v interface{}) (ArchiveEntry, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ArchiveEntry{}, errors.NewModelError("JSONEntry", "encode "+name, err)
	}
	return ArchiveEntry{Name: name, Data: data}, nil
}

// SaveArchive はエントリをzipアーカイブとしてファイルに保存する
//
// 一時ファイルに書き込んでからリネームするため、途中で失敗しても既存のファイルは壊れない。
//
// 使用例:
//
//	entry, _ := model.JSONEntry("ensemble.json", ensemble)
//	err := model.SaveArchive("HousePriceModel.zip", []model.ArchiveEntry{entry})
func SaveArchive(path string, entries []ArchiveEntry) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return errors.NewIOError("create", tmp, err)
	}

	if err := WriteArchive(file, tmp, entries); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.NewIOError("close", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.NewIOError("rename", path, err)
	}
	return nil
}

// WriteArchive はエントリをzip形式でwに書き込む。dest はエラーに載せる書き込み先の名前。
// w への書き込み失敗（ディスクフルなど）は IOError になる。
func WriteArchive(w io.Writer, dest string, entries []ArchiveEntry) error {
	zw := zip.NewWriter(w)
	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:     entry.Name,
			Method:   zip.Deflate,
			Modified: time.Unix(0, 0).UTC(),
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return errors.NewIOError("write "+entry.Name+" to", dest, err)
		}
		if _, err := fw.Write(entry.Data); err != nil {
			return errors.NewIOError("write "+entry.Name+" to", dest, err)
		}
	}
	if err := zw.Close(); err != nil {
		return errors.NewIOError("finalize", dest, err)
	}
	return nil
}

// Archive は読み込み済みのモデルアーカイブ
type Archive struct {
	Path    string
	Size    int64
	entries map[string][]byte
}

// OpenArchive はファイルからアーカイブを読み込む
//
// ファイルが無い場合はIOError、zipとして壊れている場合はModelErrorを返す。
func OpenArchive(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("open", path, err)
	}
	archive, err := ReadArchive(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	archive.Path = path
	return archive, nil
}

// ReadArchive はzip形式のデータを読み込む
func ReadArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.NewModelError("ReadArchive", "corrupt archive", err)
	}

	archive := &Archive{Size: size, entries: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, errors.NewModelError("ReadArchive", "open "+f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, errors.NewModelError("ReadArchive", "read "+f.Name, err)
		}
		archive.entries[f.Name] = data
	}
	return archive, nil
}

// Entry は名前付きエントリの内容を返す
func (a *Archive) Entry(name string) ([]byte, error) {
	data, ok := a.entries[name]
	if !ok {
		return nil, errors.NewModelError("Archive.Entry", "missing entry "+name, nil)
	}
	return data, nil
}

// DecodeJSON はJSONエントリをvにデコードする
func (a *Archive) DecodeJSON(name string, v interface{}) error {
	data, err := a.Entry(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewModelError("Archive.DecodeJSON", "decode "+name, err)
	}
	return nil
}
